package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"dream-tool/internal/assessor"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("assessment not found")

type Config struct {
	Driver string
	Path   string
	DSN    string
}

type Database struct {
	db *gorm.DB
}

func NewDatabase(cfg Config) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&AssessmentRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) SaveAssessment(rec *assessor.Record) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}
	return d.db.Create(row).Error
}

func (d *Database) GetAssessment(id string) (*assessor.Record, error) {
	var row AssessmentRecord
	result := d.db.Where("assessment_id = ?", id).First(&row)
	if result.Error != nil {
		return nil, notFound(result.Error)
	}
	return fromRow(&row)
}

func (d *Database) GetLatestAssessment() (*assessor.Record, error) {
	var row AssessmentRecord
	result := d.db.Order("assessed_at desc").Order("id desc").First(&row)
	if result.Error != nil {
		return nil, notFound(result.Error)
	}
	return fromRow(&row)
}

// ListAssessments returns the newest assessments first.
func (d *Database) ListAssessments(limit int) ([]assessor.Record, error) {
	var rows []AssessmentRecord
	result := d.db.Order("assessed_at desc").Order("id desc").Limit(limit).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	records := make([]assessor.Record, 0, len(rows))
	for i := range rows {
		rec, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func toRow(rec *assessor.Record) (*AssessmentRecord, error) {
	profile, err := json.Marshal(rec.Profile)
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}
	assumptions, err := json.Marshal(rec.Assumptions)
	if err != nil {
		return nil, fmt.Errorf("encoding assumptions: %w", err)
	}
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}

	pv, diesel := rec.Result.PV, rec.Result.Diesel
	return &AssessmentRecord{
		AssessmentID: rec.ID,
		FacilityName: rec.FacilityName,
		AssessedAt:   rec.CreatedAt,

		PVSizeKw:        pv.Sizing.PVSizeKw,
		PVInitialCost:   pv.InitialCost,
		PVLifecycleCost: pv.LifecycleCost,
		PVNPV:           pv.NPV,
		PVIRR:           pv.IRR.Rate,
		PVIRRStatus:     string(pv.IRR.Status),

		GeneratorSizeKw:     diesel.Sizing.GeneratorSizeKw,
		DieselInitialCost:   diesel.InitialCost,
		DieselLifecycleCost: diesel.LifecycleCost,
		DieselNPV:           diesel.NPV,
		DieselIRR:           diesel.IRR.Rate,
		DieselIRRStatus:     string(diesel.IRR.Status),

		LowerLifecycleCost: rec.Result.Summary.LowerLifecycleCost,

		Profile:     profile,
		Assumptions: assumptions,
		Result:      result,
	}, nil
}

func fromRow(row *AssessmentRecord) (*assessor.Record, error) {
	rec := &assessor.Record{
		ID:           row.AssessmentID,
		FacilityName: row.FacilityName,
		CreatedAt:    row.AssessedAt.UTC(),
	}
	if err := json.Unmarshal(row.Profile, &rec.Profile); err != nil {
		return nil, fmt.Errorf("decoding profile of %s: %w", row.AssessmentID, err)
	}
	if err := json.Unmarshal(row.Assumptions, &rec.Assumptions); err != nil {
		return nil, fmt.Errorf("decoding assumptions of %s: %w", row.AssessmentID, err)
	}
	if err := json.Unmarshal(row.Result, &rec.Result); err != nil {
		return nil, fmt.Errorf("decoding result of %s: %w", row.AssessmentID, err)
	}
	return rec, nil
}
