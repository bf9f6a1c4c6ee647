package bots

import "time"

// Personality determines how often a bot acts and what it says.
type Personality string

const (
	PersonalityFriendly   Personality = "friendly"
	PersonalityQuiet      Personality = "quiet"
	PersonalityEnergetic  Personality = "energetic"
	PersonalityMysterious Personality = "mysterious"
)

var personalities = []Personality{
	PersonalityFriendly,
	PersonalityQuiet,
	PersonalityEnergetic,
	PersonalityMysterious,
}

// actionIntervals is the mean time between autonomous decisions per
// personality. Fixed constants, not adaptive.
var actionIntervals = map[Personality]time.Duration{
	PersonalityFriendly:   8 * time.Second,
	PersonalityQuiet:      15 * time.Second,
	PersonalityEnergetic:  5 * time.Second,
	PersonalityMysterious: 12 * time.Second,
}

// Interval returns the personality's action interval.
func (p Personality) Interval() time.Duration {
	if d, ok := actionIntervals[p]; ok {
		return d
	}
	return actionIntervals[PersonalityFriendly]
}

var phrases = map[Personality][]string{
	PersonalityFriendly: {
		"Hey everyone! How's it going?",
		"Love the music in here!",
		"Anyone want to dance?",
		"This place is so cool!",
		"Great to meet you all!",
		"Having a wonderful time here!",
	},
	PersonalityQuiet: {
		"...",
		"*nods*",
		"Nice place.",
		"*waves quietly*",
		"Enjoying the atmosphere.",
		"*smiles*",
	},
	PersonalityEnergetic: {
		"WOOHOO! This is awesome!",
		"Let's get this party started!",
		"Dance time!",
		"Energy levels: MAXIMUM!",
		"Who's ready to have fun?!",
		"This music is FIRE!",
	},
	PersonalityMysterious: {
		"Interesting...",
		"*observes silently*",
		"The shadows whisper secrets...",
		"*mysterious smile*",
		"Not everything is as it seems...",
		"Time reveals all truths...",
	},
}

var botNames = []string{
	"Alex_2024",
	"Luna_Star",
	"CodeMaster",
	"PixelArt",
	"GameGuru",
	"TechWiz",
	"CoolCat",
	"NightOwl",
	"StarGazer",
	"ByteSize",
	"RetroGamer",
	"DigitalDream",
	"CyberPunk",
	"NeonLight",
	"VirtualVibe",
	"DataStream",
	"CloudNine",
	"ZenMode",
}

var botColors = []string{
	"#ef4444",
	"#f59e0b",
	"#10b981",
	"#3b82f6",
	"#8b5cf6",
	"#ec4899",
}
