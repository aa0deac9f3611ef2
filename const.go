package atom

const (
	Incr = 1
	Decr = -1
)

const (
	DefaultPolicyYaml = "ordering.yml"
	DefaultPolicyJson = "ordering.json"
)
