// Package overlay holds the per-run configuration layered over a snapshot: manager
// ability, quota and preferences, category costs, and level values.
package overlay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/lead-allocator/pkg/core/model"
)

// ErrMalformed is matched by every MalformedInputError
var ErrMalformed = errors.New("malformed overlay")

// MalformedInputError reports an overlay that could not be read or failed validation
type MalformedInputError struct {
	Source string
	Err    error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed overlay %s: %v", e.Source, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformed
}

// ManagerConfig configures one manager
type ManagerConfig struct {
	MemberID    string             `yaml:"memberID" validate:"required"`
	Name        string             `yaml:"name" validate:"required"`
	Contact     string             `yaml:"contact,omitempty"`
	Score       float64            `yaml:"score" validate:"gte=0"`
	MaxLeads    int                `yaml:"maxLeads" validate:"gte=0"`
	Preferences map[string]float64 `yaml:"preferences,omitempty" validate:"dive,keys,startswith=category.,endkeys,gte=0"`
}

// CategoryConfig sets the cost weight of a category
type CategoryConfig struct {
	ID   string  `yaml:"id" validate:"required"`
	Name string  `yaml:"name,omitempty"`
	Cost float64 `yaml:"cost" validate:"gte=0"`
}

// LevelConfig sets the value of a lead level
type LevelConfig struct {
	Level string  `yaml:"level" validate:"required"`
	Value float64 `yaml:"value" validate:"gt=0"`
}

// Overlay is the full configuration overlay
type Overlay struct {
	Managers   []ManagerConfig  `yaml:"managers" validate:"unique=MemberID,dive"`
	Categories []CategoryConfig `yaml:"categories" validate:"unique=ID,dive"`
	Levels     []LevelConfig    `yaml:"levels" validate:"unique=Level,dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the overlay's structure. A missing baseline level is not checked
// here; it is a configuration error raised when the level table is used.
func Validate(o *Overlay) error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("overlay validation failed: %w", err)
	}
	return nil
}

// LevelTable builds the level value table
func (o *Overlay) LevelTable(baseline string) model.LevelValueTable {
	values := make(map[string]float64, len(o.Levels))
	for _, l := range o.Levels {
		values[strings.TrimSpace(l.Level)] = l.Value
	}
	return model.NewLevelValueTable(baseline, values)
}

// CostTable builds the category cost table
func (o *Overlay) CostTable() model.CategoryCostTable {
	costs := make(model.CategoryCostTable, len(o.Categories))
	for _, c := range o.Categories {
		costs[c.ID] = c.Cost
	}
	return costs
}
