package hcl_adapter

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Explorers *explorersBlock     `hcl:"explorers,block"`
	Galaxy    *galaxyBlock        `hcl:"galaxy,block"`
	Systems   []*solarSystemBlock `hcl:"solar_system,block"`
	Visited   *visitedBlock       `hcl:"visited,block"`
	Relay     *relayBlock         `hcl:"relay,block"`
}

type explorersBlock struct {
	Count     int    `hcl:"count,optional"`
	HashCount int    `hcl:"hash_count,optional"`
	Algorithm string `hcl:"algorithm,optional"`
	Timeout   string `hcl:"timeout,optional"`
}

type galaxyBlock struct {
	Start int `hcl:"start"`
}

type solarSystemBlock struct {
	ID         string `hcl:"id,label"`
	Frequency  string `hcl:"frequency"`
	Neighbours []int  `hcl:"neighbours,optional"`
}

type visitedBlock struct {
	Backend string `hcl:"backend"`
	URL     string `hcl:"url,optional"`
	RunID   string `hcl:"run_id,optional"`
}

type relayBlock struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	Timeout            string `hcl:"timeout,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}
