package command

type BotsConfig struct {
	Disabled bool `json:"disabled"`
}
