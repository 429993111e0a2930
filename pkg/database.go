package pdsp

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type PlaneGeometryEntry struct {
	Plane  int `db:"Plane"`
	NWires int `db:"NWires"`
	NTicks int `db:"NTicks"`
}

// LoadGeometry reads the plane sizes valid for a run. Planes missing from the
// table keep their default size.
func LoadGeometry(db *sqlx.DB, runNumber int) (Geometry, error) {
	query := "SELECT Plane, NWires, NTicks FROM PlaneGeometry WHERE MinRun <= ? and MaxRun >= ? ORDER BY Plane"
	logger.Info(fmt.Sprintf("Reading plane geometry for run %d from database", runNumber), "database")

	rows, err := db.Queryx(query, runNumber, runNumber)
	if err != nil {
		return Geometry{}, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	geometry := DefaultGeometry()
	geometry.MaxTime = 0
	found := 0
	for rows.Next() {
		result := PlaneGeometryEntry{}
		if err := rows.StructScan(&result); err != nil {
			return Geometry{}, fmt.Errorf("error scanning DB row: %w", err)
		}
		if !validPlane(result.Plane) {
			return Geometry{}, &ErrInvalidPlane{PlaneID: result.Plane}
		}
		geometry.MaxWires[result.Plane] = result.NWires
		geometry.MaxTime = max(geometry.MaxTime, result.NTicks)
		found++
	}
	if err := rows.Err(); err != nil {
		return Geometry{}, fmt.Errorf("error reading DB rows: %w", err)
	}
	if found == 0 {
		return Geometry{}, &ErrNoGeometry{Run: runNumber}
	}
	return geometry, nil
}
