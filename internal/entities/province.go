package entities

type Province string

const (
	ProvinceAny          Province = "Any"
	Alberta              Province = "AB"
	BritishColumbia      Province = "BC"
	Manitoba             Province = "MB"
	NewBrunswick         Province = "NB"
	Newfoundland         Province = "NL"
	NorthwestTerritories Province = "NT"
	NovaScotia           Province = "NS"
	Nunavut              Province = "NU"
	Ontario              Province = "ON"
	PrinceEdwardIsland   Province = "PE"
	Quebec               Province = "QC"
	Saskatchewan         Province = "SK"
	Yukon                Province = "YT"
)

var provinceNames = map[Province]string{
	Alberta:              "Alberta",
	BritishColumbia:      "British Columbia",
	Manitoba:             "Manitoba",
	NewBrunswick:         "New Brunswick",
	Newfoundland:         "Newfoundland and Labrador",
	NorthwestTerritories: "Northwest Territories",
	NovaScotia:           "Nova Scotia",
	Nunavut:              "Nunavut",
	Ontario:              "Ontario",
	PrinceEdwardIsland:   "Prince Edward Island",
	Quebec:               "Quebec",
	Saskatchewan:         "Saskatchewan",
	Yukon:                "Yukon",
}

func (p Province) IsAny() bool {
	return p == "" || p == ProvinceAny
}

// IsValid reports whether p is one of the 13 province/territory codes. "Any" is not a valid
// location for a posting, only a filter value.
func (p Province) IsValid() bool {
	_, ok := provinceNames[p]
	return ok
}

func (p Province) Name() string {
	if p.IsAny() {
		return string(ProvinceAny)
	}
	return provinceNames[p]
}

func Provinces() []Province {
	return []Province{Alberta, BritishColumbia, Manitoba, NewBrunswick, Newfoundland, NorthwestTerritories, NovaScotia,
		Nunavut, Ontario, PrinceEdwardIsland, Quebec, Saskatchewan, Yukon}
}
