package config

// Default configuration values.
const (
	// DefaultLedgerPath is where applied transactions are recorded.
	DefaultLedgerPath = "/var/lib/kerntune/transactions.json"

	// DefaultSysctlDir is the root under which persisted parameter files
	// are written and from which reset removes them.
	DefaultSysctlDir = "/etc/sysctl.d"

	// DefaultPersona is the workload profile assumed when none is given.
	DefaultPersona = "general"

	// DefaultFormat is the output format for reports.
	DefaultFormat = "pretty"

	// DefaultLogLevel is the default logging verbosity.
	DefaultLogLevel = "info"
)
