package question

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core"
)

// QuestionType is the closed set of supported question formats.
type QuestionType string

const (
	TypeMCQ         QuestionType = "MCQ"
	TypeMSQ         QuestionType = "MSQ"
	TypeTrueFalse   QuestionType = "TRUE_FALSE"
	TypeNumeric     QuestionType = "NUMERIC"
	TypeShort       QuestionType = "SHORT"
	TypeDescriptive QuestionType = "DESCRIPTIVE"
	TypeCode        QuestionType = "CODE"
)

func (qt QuestionType) Valid() bool {
	switch qt {
	case TypeMCQ, TypeMSQ, TypeTrueFalse, TypeNumeric, TypeShort, TypeDescriptive, TypeCode:
		return true
	}
	return false
}

// RequiresOptions reports whether this type must carry answer options and a
// correct key.
func (qt QuestionType) RequiresOptions() bool {
	switch qt {
	case TypeMCQ, TypeMSQ, TypeTrueFalse:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// AnswerKind discriminates the AnswerKey union.
type AnswerKind int

const (
	AnswerNone AnswerKind = iota
	AnswerChoice
	AnswerChoices
	AnswerNumber
)

// AnswerKey is the correct answer of an auto-gradable question. It is a tagged
// union: a single option key (MCQ, TRUE_FALSE), a set of option keys (MSQ) or
// a number (NUMERIC). Its JSON form is the bare variant value.
type AnswerKey struct {
	Kind    AnswerKind `json:"-"`
	Choice  string     `json:"-"`
	Choices []string   `json:"-"`
	Number  float64    `json:"-"`
}

func ChoiceKey(choice string) AnswerKey { return AnswerKey{Kind: AnswerChoice, Choice: choice} }

func ChoicesKey(choices ...string) AnswerKey {
	return AnswerKey{Kind: AnswerChoices, Choices: choices}
}

func NumberKey(n float64) AnswerKey { return AnswerKey{Kind: AnswerNumber, Number: n} }

func (k AnswerKey) IsZero() bool { return k.Kind == AnswerNone }

func (k AnswerKey) MarshalJSON() ([]byte, error) {
	switch k.Kind {
	case AnswerChoice:
		return json.Marshal(k.Choice)
	case AnswerChoices:
		return json.Marshal(k.Choices)
	case AnswerNumber:
		return json.Marshal(k.Number)
	}
	return []byte("null"), nil
}

func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*k = AnswerKey{}
		return nil
	}
	var choice string
	if err := json.Unmarshal(data, &choice); err == nil {
		*k = ChoiceKey(choice)
		return nil
	}
	var choices []string
	if err := json.Unmarshal(data, &choices); err == nil {
		*k = ChoicesKey(choices...)
		return nil
	}
	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		*k = NumberKey(number)
		return nil
	}
	return errors.New("correct_key must be a string, a list of strings or a number")
}

func (k AnswerKey) Value() (driver.Value, error) {
	if k.IsZero() {
		return nil, nil
	}
	return json.Marshal(k)
}

func (k *AnswerKey) Scan(src interface{}) error {
	if src == nil {
		*k = AnswerKey{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.Errorf("unsupported answer key type %T", src)
	}
	return k.UnmarshalJSON(b)
}

// Options maps option keys to their display text, e.g. {"A": "Stack", "B": "Queue"}.
type Options map[string]string

func (o Options) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	return json.Marshal(o)
}

func (o *Options) Scan(src interface{}) error {
	if src == nil {
		*o = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.Errorf("unsupported options type %T", src)
	}
	return json.Unmarshal(b, o)
}

// NegativeMarking configures the penalty applied on a wrong answer.
type NegativeMarking struct {
	Enabled bool    `json:"enabled"`
	Penalty float64 `json:"penalty" validate:"gte=0"`
}

func (nm *NegativeMarking) Value() (driver.Value, error) {
	if nm == nil {
		return nil, nil
	}
	return json.Marshal(nm)
}

// PartialScoring configures partial credit for MSQ and NUMERIC questions.
type PartialScoring struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode,omitempty"`
}

func (ps *PartialScoring) Value() (driver.Value, error) {
	if ps == nil {
		return nil, nil
	}
	return json.Marshal(ps)
}

type Question struct {
	ID              string           `json:"id" db:"id"`
	SubjectID       string           `json:"subject_id" db:"subject_id"`
	Type            QuestionType     `json:"type" db:"type"`
	Text            string           `json:"text" db:"text"`
	Options         Options          `json:"options,omitempty" db:"options"`
	CorrectKey      AnswerKey        `json:"correct_key,omitempty" db:"correct_key"`
	MaxMarks        float64          `json:"max_marks" db:"max_marks"`
	COID            string           `json:"co_id" db:"co_id"`
	POIDs           []string         `json:"po_ids" db:"po_ids"`
	Difficulty      Difficulty       `json:"difficulty" db:"difficulty"`
	Tags            []string         `json:"tags" db:"tags"`
	NegativeMarking *NegativeMarking `json:"negative_marking,omitempty" db:"negative_marking"`
	PartialScoring  *PartialScoring  `json:"partial_scoring,omitempty" db:"partial_scoring"`
	Version         int              `json:"version" db:"version"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

// NewQuestion contains information needed to add a question to a bank; the
// owning subject comes from the request path, never the payload.
type NewQuestion struct {
	Type            QuestionType     `json:"type" validate:"required,questiontype"`
	Text            string           `json:"text" validate:"required,min=10"`
	Options         Options          `json:"options"`
	CorrectKey      AnswerKey        `json:"correct_key"`
	MaxMarks        float64          `json:"max_marks" validate:"required,gte=0.1,lte=100"`
	COID            string           `json:"co_id" validate:"required"`
	POIDs           []string         `json:"po_ids"`
	Difficulty      Difficulty       `json:"difficulty" validate:"required,difficulty"`
	Tags            []string         `json:"tags"`
	NegativeMarking *NegativeMarking `json:"negative_marking"`
	PartialScoring  *PartialScoring  `json:"partial_scoring"`
}

func (nq *NewQuestion) Clean() {
	nq.Text = core.CleanString(nq.Text)
}

// UpdateQuestion carries the mutable question fields; the owning subject
// never changes.
type UpdateQuestion struct {
	Type            QuestionType     `json:"type" validate:"required,questiontype"`
	Text            string           `json:"text" validate:"required,min=10"`
	Options         Options          `json:"options"`
	CorrectKey      AnswerKey        `json:"correct_key"`
	MaxMarks        float64          `json:"max_marks" validate:"required,gte=0.1,lte=100"`
	COID            string           `json:"co_id" validate:"required"`
	POIDs           []string         `json:"po_ids"`
	Difficulty      Difficulty       `json:"difficulty" validate:"required,difficulty"`
	Tags            []string         `json:"tags"`
	NegativeMarking *NegativeMarking `json:"negative_marking"`
	PartialScoring  *PartialScoring  `json:"partial_scoring"`
}

func (uq *UpdateQuestion) Clean() {
	uq.Text = core.CleanString(uq.Text)
}

// QueryFilter applies an AND operation on its non-empty fields.
type QueryFilter struct {
	SubjectID  string
	Type       QuestionType
	Difficulty Difficulty
	COID       string
	Tags       []string
}

var (
	questionTypeTag  = "questiontype"
	questionTypeText = "invalid question type"

	difficultyTag  = "difficulty"
	difficultyText = "invalid difficulty"

	payloadTag           = "payload"
	payloadOptionsText   = "this question type requires at least 2 options and a correct key"
	payloadKeyText       = "correct key does not match the question type or its options"
	payloadNoOptionsText = "this question type does not take options or a correct key"
)

func questionTypeValidation(fl validator.FieldLevel) bool {
	if qt, ok := fl.Field().Interface().(QuestionType); ok {
		return qt.Valid()
	}
	return false
}

func difficultyValidation(fl validator.FieldLevel) bool {
	if d, ok := fl.Field().Interface().(Difficulty); ok {
		return d.Valid()
	}
	return false
}

// payloadStructValidation enforces type-specific structural validity on
// question payloads.
func payloadStructValidation(sl validator.StructLevel) {
	switch q := sl.Current().Interface().(type) {
	case NewQuestion:
		validatePayload(sl, q.Type, q.Options, q.CorrectKey)
	case UpdateQuestion:
		validatePayload(sl, q.Type, q.Options, q.CorrectKey)
	}
}

func validatePayload(sl validator.StructLevel, typ QuestionType, opts Options, key AnswerKey) {
	if !typ.Valid() {
		return // the `questiontype` validator reports it
	}
	reportErr := func(field, text string) {
		sl.ReportError(field, field, "Payload", payloadTag, text)
	}

	switch typ {
	case TypeMCQ, TypeTrueFalse:
		if len(opts) < 2 || key.IsZero() {
			reportErr("options", payloadOptionsText)
			return
		}
		if key.Kind != AnswerChoice {
			reportErr("correct_key", payloadKeyText)
			return
		}
		if _, ok := opts[key.Choice]; !ok {
			reportErr("correct_key", payloadKeyText)
		}
	case TypeMSQ:
		if len(opts) < 2 || key.IsZero() {
			reportErr("options", payloadOptionsText)
			return
		}
		if key.Kind != AnswerChoices || len(key.Choices) == 0 {
			reportErr("correct_key", payloadKeyText)
			return
		}
		for _, choice := range key.Choices {
			if _, ok := opts[choice]; !ok {
				reportErr("correct_key", payloadKeyText)
				return
			}
		}
	case TypeNumeric:
		if key.Kind != AnswerNumber {
			reportErr("correct_key", payloadKeyText)
		}
	case TypeShort, TypeDescriptive, TypeCode:
		// graded manually
		if len(opts) > 0 || !key.IsZero() {
			reportErr("options", payloadNoOptionsText)
		}
	}
}

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(questionTypeTag, questionTypeValidation)
	core.RegisterCustomTranslation(validate, translator, questionTypeTag, questionTypeText)

	_ = validate.RegisterValidation(difficultyTag, difficultyValidation)
	core.RegisterCustomTranslation(validate, translator, difficultyTag, difficultyText)

	validate.RegisterStructValidation(payloadStructValidation, NewQuestion{}, UpdateQuestion{})
	// payload errors carry their message in the param
	_ = validate.RegisterTranslation(
		payloadTag, translator,
		func(t ut.Translator) error { return t.Add(payloadTag, "{0}", false) },
		func(t ut.Translator, fe validator.FieldError) string { return fe.Param() },
	)
}
