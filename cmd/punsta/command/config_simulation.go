package command

type SimulationConfig struct {
	Disabled bool `json:"disabled"`
}
