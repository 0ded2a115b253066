package config

// Action input names, as declared in action.yml.
const (
	InputConfigPath    = "configPath"
	InputUpdateIOS     = "updateIos"
	InputUpdateAndroid = "updateAndroid"
	InputDryRun        = "dryRun"
	InputStrictNumbers = "strictNumbers"
)

// Inputs are the raw string inputs handed over by the calling workflow.
type Inputs struct {
	ConfigPath    string
	UpdateIOS     string
	UpdateAndroid string
	DryRun        string
	StrictNumbers string
}

// ReadInputs collects the action inputs through get, typically
// githubactions.Action.GetInput.
func ReadInputs(get func(name string) string) Inputs {
	return Inputs{
		ConfigPath:    get(InputConfigPath),
		UpdateIOS:     get(InputUpdateIOS),
		UpdateAndroid: get(InputUpdateAndroid),
		DryRun:        get(InputDryRun),
		StrictNumbers: get(InputStrictNumbers),
	}
}

// ApplyInputs overlays every non-empty input. Toggles are enabled only by the
// literal "true"; any other non-empty value disables them.
func (c *Config) ApplyInputs(in Inputs) {
	if in.ConfigPath != "" {
		c.ConfigPath = in.ConfigPath
	}
	if in.UpdateIOS != "" {
		c.UpdateIOS = IsTrue(in.UpdateIOS)
	}
	if in.UpdateAndroid != "" {
		c.UpdateAndroid = IsTrue(in.UpdateAndroid)
	}
	if in.DryRun != "" {
		c.DryRun = IsTrue(in.DryRun)
	}
	if in.StrictNumbers != "" {
		c.StrictNumbers = IsTrue(in.StrictNumbers)
	}
}
