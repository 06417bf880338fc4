package entities

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Salary is stored as a number. Older records carry free-form strings like "$55,000";
// those are coerced on decode and marked invalid when they cannot be parsed.
type Salary struct {
	Amount float64
	Valid  bool
}

func NewSalary(amount float64) Salary {
	return Salary{Amount: amount, Valid: true}
}

var (
	salaryReplacer = strings.NewReplacer("$", "", ",", "", " ", "", "_", "", "CAD", "", "cad", "")
	decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
)

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func ParseSalary(s string) (Salary, error) {

	cleaned := salaryReplacer.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return Salary{}, fmt.Errorf("empty salary")
	}

	if !decimalPattern.MatchString(cleaned) {
		return Salary{}, fmt.Errorf("salary %q is not a number", s)
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || !isFinite(amount) {
		return Salary{}, fmt.Errorf("salary %q is not a number", s)
	}
	if amount < 0 {
		return Salary{}, fmt.Errorf("salary %q is negative", s)
	}
	return NewSalary(amount), nil
}

// IsSound reports whether the amount can be stored: finite and not negative.
func (s Salary) IsSound() bool {
	return isFinite(s.Amount) && s.Amount >= 0
}

func (s Salary) InRange(lower, upper *float64) bool {
	if !s.Valid || !isFinite(s.Amount) {
		return false
	}
	if lower != nil && s.Amount < *lower {
		return false
	}
	if upper != nil && s.Amount > *upper {
		return false
	}
	return true
}

func (s Salary) String() string {
	if !s.Valid || !isFinite(s.Amount) {
		return "n/a"
	}
	return strconv.FormatFloat(s.Amount, 'f', -1, 64)
}

func (s Salary) MarshalJSON() ([]byte, error) {
	if !s.Valid || !isFinite(s.Amount) {
		return []byte("null"), nil
	}
	return json.Marshal(s.Amount)
}

func (s *Salary) UnmarshalJSON(b []byte) error {

	if string(b) == "null" {
		*s = Salary{}
		return nil
	}

	var amount float64
	if err := json.Unmarshal(b, &amount); err == nil {
		*s = NewSalary(amount)
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("salary must be a number or a string: %w", err)
	}

	parsed, err := ParseSalary(str)
	if err != nil {
		*s = Salary{}
		return nil
	}
	*s = parsed
	return nil
}
