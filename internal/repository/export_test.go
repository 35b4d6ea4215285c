package repository

import "database/sql"

// ContainerDB exposes the container-backed pool to the external test package.
func ContainerDB() *sql.DB {
	return testDB
}
