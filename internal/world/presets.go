package world

// Built-in room presets used when no room assets are configured. Layouts
// mirror the client's three rooms: an open lobby, a café with tables and
// seating, and a rooftop terrace with planters around the edge.
func DefaultRooms() map[string]*Room {
	return map[string]*Room{
		"lobby": {
			Name:         "Lobby",
			AmbientTrack: "sunny",
			Tiles: []string{
				"################",
				"#..............#",
				"#..............#",
				"#....##..##....#",
				"#..............#",
				"#..s........s..#",
				"#..............#",
				"#....##..##....#",
				"#..............#",
				"#..............#",
				"#..............#",
				"################",
			},
		},
		"cafe": {
			Name:         "Café",
			AmbientTrack: "sunny",
			Tiles: []string{
				"################",
				"#..............#",
				"#..#s...#s.....#",
				"#..s#...s#.....#",
				"#..............#",
				"#..............#",
				"#..#s...#s.....#",
				"#..s#...s#.....#",
				"#..............#",
				"#.....####.....#",
				"#..............#",
				"################",
			},
		},
		"rooftop": {
			Name:         "Rooftop",
			AmbientTrack: "night",
			Tiles: []string{
				"################",
				"#.#..........#.#",
				"#..............#",
				"#..............#",
				"#...s......s...#",
				"#..............#",
				"#..............#",
				"#...s......s...#",
				"#..............#",
				"#..............#",
				"#.#..........#.#",
				"################",
			},
		},
	}
}
