package record

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agenthands/kinlink/internal/core/model"
)

// BirthRow is the relational layout of a birth registration.
type BirthRow struct {
	ID                   string `gorm:"primaryKey"`
	StandardisedID       string `gorm:"index"`
	Day                  string
	Month                string
	Year                 string
	Forename             string
	Surname              string
	MotherForename       string
	MotherMaidenSurname  string
	FatherForename       string
	FatherSurname        string
	BirthPlace           string
	ParentsMarriageDay   string
	ParentsMarriageMonth string
	ParentsMarriageYear  string
	ParentsMarriagePlace string
}

func (BirthRow) TableName() string { return "births" }

type DeathRow struct {
	ID                  string `gorm:"primaryKey"`
	StandardisedID      string `gorm:"index"`
	DeathDay            string
	DeathMonth          string
	DeathYear           string
	DateOfBirth         string
	AgeAtDeath          string
	Forename            string
	Surname             string
	MotherForename      string
	MotherMaidenSurname string
	FatherForename      string
	FatherSurname       string
	DeathPlace          string
}

func (DeathRow) TableName() string { return "deaths" }

type MarriageRow struct {
	ID             string `gorm:"primaryKey"`
	StandardisedID string `gorm:"index"`
	Day            string
	Month          string
	Year           string
	Place          string

	BrideForename            string
	BrideSurname             string
	BrideMotherForename      string
	BrideMotherMaidenSurname string
	BrideFatherForename      string
	BrideFatherSurname       string
	BrideAge                 string
	BrideDateOfBirth         string
	BrideAddress             string

	GroomForename            string
	GroomSurname             string
	GroomMotherForename      string
	GroomMotherMaidenSurname string
	GroomFatherForename      string
	GroomFatherSurname       string
	GroomAge                 string
	GroomDateOfBirth         string
	GroomAddress             string
}

func (MarriageRow) TableName() string { return "marriages" }

// SQLStore reads records from a relational database through gorm.
type SQLStore struct {
	DB *gorm.DB
}

// Open connects to driver ("sqlite" or "postgres") and migrates the record
// tables.
func Open(driver, dsn string) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported records driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open records database: %w", err)
	}
	if err := db.AutoMigrate(&BirthRow{}, &DeathRow{}, &MarriageRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate records database: %w", err)
	}
	return &SQLStore{DB: db}, nil
}

func (s *SQLStore) Get(ctx context.Context, kind model.Kind, id string) (model.Record, error) {
	db := s.DB.WithContext(ctx)
	switch kind {
	case model.KindBirth:
		var row BirthRow
		if err := first(db, &row, id); err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, id, err)
		}
		return row.record(), nil
	case model.KindDeath:
		var row DeathRow
		if err := first(db, &row, id); err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, id, err)
		}
		return row.record(), nil
	case model.KindMarriage:
		recordID, side, ok := model.SplitPartyID(id)
		if !ok {
			return nil, fmt.Errorf("%s %s: not a party id: %w", kind, id, ErrNotFound)
		}
		var row MarriageRow
		if err := first(db, &row, recordID); err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, id, err)
		}
		return row.record().Party(side), nil
	}
	return nil, fmt.Errorf("unknown record kind %q", kind)
}

// Save upserts r. A marriage party saves the whole marriage.
func (s *SQLStore) Save(ctx context.Context, r model.Record) error {
	db := s.DB.WithContext(ctx)
	switch v := r.(type) {
	case *model.Birth:
		return db.Save(birthRow(v)).Error
	case *model.Death:
		return db.Save(deathRow(v)).Error
	case *model.Party:
		return s.SaveMarriage(ctx, v.Marriage)
	}
	return fmt.Errorf("cannot save record of type %T", r)
}

// SaveMarriage upserts a marriage with both of its parties.
func (s *SQLStore) SaveMarriage(ctx context.Context, m *model.Marriage) error {
	return s.DB.WithContext(ctx).Save(marriageRow(m)).Error
}

func first(db *gorm.DB, dest interface{}, id string) error {
	err := db.First(dest, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *BirthRow) record() *model.Birth {
	return &model.Birth{
		RecordID: r.ID, StdID: r.StandardisedID,
		Day: r.Day, Month: r.Month, Year: r.Year,
		Name: model.Names{
			r.Forename, r.Surname,
			r.MotherForename, r.MotherMaidenSurname,
			r.FatherForename, r.FatherSurname,
		},
		BirthPlace:           r.BirthPlace,
		ParentsMarriageDay:   r.ParentsMarriageDay,
		ParentsMarriageMonth: r.ParentsMarriageMonth,
		ParentsMarriageYear:  r.ParentsMarriageYear,
		ParentsMarriagePlace: r.ParentsMarriagePlace,
	}
}

func birthRow(b *model.Birth) *BirthRow {
	return &BirthRow{
		ID: b.RecordID, StandardisedID: b.StdID,
		Day: b.Day, Month: b.Month, Year: b.Year,
		Forename: b.Name[model.Forename], Surname: b.Name[model.Surname],
		MotherForename: b.Name[model.MotherForename], MotherMaidenSurname: b.Name[model.MotherMaidenSurname],
		FatherForename: b.Name[model.FatherForename], FatherSurname: b.Name[model.FatherSurname],
		BirthPlace:           b.BirthPlace,
		ParentsMarriageDay:   b.ParentsMarriageDay,
		ParentsMarriageMonth: b.ParentsMarriageMonth,
		ParentsMarriageYear:  b.ParentsMarriageYear,
		ParentsMarriagePlace: b.ParentsMarriagePlace,
	}
}

func (r *DeathRow) record() *model.Death {
	return &model.Death{
		RecordID: r.ID, StdID: r.StandardisedID,
		DeathDay: r.DeathDay, DeathMonth: r.DeathMonth, DeathYear: r.DeathYear,
		DateOfBirth: r.DateOfBirth,
		AgeAtDeath:  r.AgeAtDeath,
		Name: model.Names{
			r.Forename, r.Surname,
			r.MotherForename, r.MotherMaidenSurname,
			r.FatherForename, r.FatherSurname,
		},
		DeathPlace: r.DeathPlace,
	}
}

func deathRow(d *model.Death) *DeathRow {
	return &DeathRow{
		ID: d.RecordID, StandardisedID: d.StdID,
		DeathDay: d.DeathDay, DeathMonth: d.DeathMonth, DeathYear: d.DeathYear,
		DateOfBirth: d.DateOfBirth, AgeAtDeath: d.AgeAtDeath,
		Forename: d.Name[model.Forename], Surname: d.Name[model.Surname],
		MotherForename: d.Name[model.MotherForename], MotherMaidenSurname: d.Name[model.MotherMaidenSurname],
		FatherForename: d.Name[model.FatherForename], FatherSurname: d.Name[model.FatherSurname],
		DeathPlace: d.DeathPlace,
	}
}

func (r *MarriageRow) record() *model.Marriage {
	return &model.Marriage{
		RecordID: r.ID, StdID: r.StandardisedID,
		Day: r.Day, Month: r.Month, Year: r.Year,
		MarriagePlace: r.Place,
		Bride: model.Spouse{
			Name: model.Names{
				r.BrideForename, r.BrideSurname,
				r.BrideMotherForename, r.BrideMotherMaidenSurname,
				r.BrideFatherForename, r.BrideFatherSurname,
			},
			Age: r.BrideAge, DateOfBirth: r.BrideDateOfBirth, Address: r.BrideAddress,
		},
		Groom: model.Spouse{
			Name: model.Names{
				r.GroomForename, r.GroomSurname,
				r.GroomMotherForename, r.GroomMotherMaidenSurname,
				r.GroomFatherForename, r.GroomFatherSurname,
			},
			Age: r.GroomAge, DateOfBirth: r.GroomDateOfBirth, Address: r.GroomAddress,
		},
	}
}

func marriageRow(m *model.Marriage) *MarriageRow {
	b, g := m.Bride, m.Groom
	return &MarriageRow{
		ID: m.RecordID, StandardisedID: m.StdID,
		Day: m.Day, Month: m.Month, Year: m.Year, Place: m.MarriagePlace,

		BrideForename: b.Name[model.Forename], BrideSurname: b.Name[model.Surname],
		BrideMotherForename: b.Name[model.MotherForename], BrideMotherMaidenSurname: b.Name[model.MotherMaidenSurname],
		BrideFatherForename: b.Name[model.FatherForename], BrideFatherSurname: b.Name[model.FatherSurname],
		BrideAge: b.Age, BrideDateOfBirth: b.DateOfBirth, BrideAddress: b.Address,

		GroomForename: g.Name[model.Forename], GroomSurname: g.Name[model.Surname],
		GroomMotherForename: g.Name[model.MotherForename], GroomMotherMaidenSurname: g.Name[model.MotherMaidenSurname],
		GroomFatherForename: g.Name[model.FatherForename], GroomFatherSurname: g.Name[model.FatherSurname],
		GroomAge: g.Age, GroomDateOfBirth: g.DateOfBirth, GroomAddress: g.Address,
	}
}
