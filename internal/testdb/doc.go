// Package testdb provides utilities for database integration tests.
//
// Tests run only when DATABASE_URL (or CLINIC_TEST_DB_URL) points at a
// PostgreSQL instance; otherwise they are skipped. The schema is migrated
// once per process and every test runs inside a transaction that is rolled
// back afterwards:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        students := postgres.NewPostgresStudentStore(tx, nil)
//	        ...
//	    })
//	}
package testdb
