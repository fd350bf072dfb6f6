package outcome

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tathmini/core"
)

// BloomLevel is a level of Bloom's taxonomy a course outcome targets.
type BloomLevel string

const (
	BloomRemember   BloomLevel = "Remember"
	BloomUnderstand BloomLevel = "Understand"
	BloomApply      BloomLevel = "Apply"
	BloomAnalyze    BloomLevel = "Analyze"
	BloomEvaluate   BloomLevel = "Evaluate"
	BloomCreate     BloomLevel = "Create"
)

func (bl BloomLevel) Valid() bool {
	switch bl {
	case BloomRemember, BloomUnderstand, BloomApply, BloomAnalyze, BloomEvaluate, BloomCreate:
		return true
	}
	return false
}

// CO is a course outcome declared on a subject.
type CO struct {
	ID          string     `json:"id" db:"id"`
	SubjectID   string     `json:"subject_id" db:"subject_id"`
	Code        string     `json:"code" db:"code"`
	Description string     `json:"description" db:"description"`
	BloomLevel  BloomLevel `json:"bloom_level" db:"bloom_level"`
	TargetLevel float64    `json:"target_level" db:"target_level"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// PO is a program outcome declared on a program.
type PO struct {
	ID          string    `json:"id" db:"id"`
	ProgramID   string    `json:"program_id" db:"program_id"`
	Code        string    `json:"code" db:"code"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// COPOMapping links a course outcome to a program outcome with a correlation
// weight (1=low, 2=medium, 3=high). Mappings are replaced, never updated in
// place, hence no UpdatedAt.
type COPOMapping struct {
	ID        string    `json:"id" db:"id"`
	COID      string    `json:"co_id" db:"co_id"`
	POID      string    `json:"po_id" db:"po_id"`
	Weight    int       `json:"weight" db:"weight"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewCO contains information needed to declare a CO; the owning subject comes
// from the request path, never the payload.
type NewCO struct {
	Code        string     `json:"code" validate:"required,min=1,max=20"`
	Description string     `json:"description" validate:"required,min=10"`
	BloomLevel  BloomLevel `json:"bloom_level" validate:"required,bloomlevel"`
	TargetLevel float64    `json:"target_level" validate:"gte=0,lte=1"`
}

func (nc *NewCO) Clean() {
	nc.Code = core.CleanString(nc.Code)
	nc.Description = core.CleanString(nc.Description)
}

// UpdateCO carries the mutable CO fields; the owning subject never changes.
type UpdateCO struct {
	Code        string     `json:"code" validate:"required,min=1,max=20"`
	Description string     `json:"description" validate:"required,min=10"`
	BloomLevel  BloomLevel `json:"bloom_level" validate:"required,bloomlevel"`
	TargetLevel float64    `json:"target_level" validate:"gte=0,lte=1"`
}

func (uc *UpdateCO) Clean() {
	uc.Code = core.CleanString(uc.Code)
	uc.Description = core.CleanString(uc.Description)
}

// NewPO contains information needed to declare a PO; the owning program comes
// from the request path.
type NewPO struct {
	Code        string `json:"code" validate:"required,min=1,max=20"`
	Description string `json:"description" validate:"required,min=10"`
}

func (np *NewPO) Clean() {
	np.Code = core.CleanString(np.Code)
	np.Description = core.CleanString(np.Description)
}

// NewMapping contains information needed to map a CO to a PO; the CO comes
// from the request path.
type NewMapping struct {
	POID   string `json:"po_id" validate:"required"`
	Weight int    `json:"weight" validate:"required,gte=1,lte=3"`
}

type UpdateMapping struct {
	Weight int `json:"weight" validate:"required,gte=1,lte=3"`
}

var (
	bloomLevelTag  = "bloomlevel"
	bloomLevelText = "invalid bloom level"
)

func bloomLevelValidation(fl validator.FieldLevel) bool {
	if bl, ok := fl.Field().Interface().(BloomLevel); ok {
		return bl.Valid()
	}
	return false
}

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(bloomLevelTag, bloomLevelValidation)
	core.RegisterCustomTranslation(validate, translator, bloomLevelTag, bloomLevelText)
}
