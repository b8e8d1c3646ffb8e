package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./library.db"

	// DefaultLoanDays is the loan period used when a borrow request omits it
	DefaultLoanDays = 7

	// DefaultHistoryLimit bounds the returned-loans list on the loans page
	DefaultHistoryLimit = 50
)

// Supported values for DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)
