package model

// ActionsTaken is a fixed-shape sub-record. Its zero value (all flags false,
// empty detail strings) is the documented default substituted whenever the
// stored value is absent or malformed.
type ActionsTaken struct {
	RestedInClinic         bool   `json:"restedInClinic"`
	GivenFirstAid          bool   `json:"givenFirstAid"`
	AdministeredMedication bool   `json:"administeredMedication"`
	MedicationDetails      string `json:"medicationDetails"`
	SentHome               bool   `json:"sentHome"`
	Referred               bool   `json:"referred"`
	ReferredTo             string `json:"referredTo"`
	Others                 bool   `json:"others"`
	OthersDetails          string `json:"othersDetails"`
}

// Consultation is the canonical projection of a consultation outcome.
type Consultation struct {
	ID              string       `json:"id"`
	StudentID       string       `json:"studentId"`
	FirstName       string       `json:"firstName" validate:"max=100"`
	MiddleInitial   string       `json:"middleInitial" validate:"max=5"`
	LastName        string       `json:"lastName" validate:"max=100"`
	Age             int          `json:"age" validate:"gte=0,lte=150"`
	Gender          string       `json:"gender"`
	GradeSection    string       `json:"gradeSection"`
	DateOfBirth     string       `json:"dateOfBirth"`
	Address         string       `json:"address"`
	ParentGuardian  string       `json:"parentGuardian"`
	ContactNumber   string       `json:"contactNumber" validate:"max=20"`
	Concern         string       `json:"concern"`
	Nurse           string       `json:"nurse"`
	DateTime        string       `json:"dateTime"`
	Temperature     string       `json:"temperature"`
	PulseRate       string       `json:"pulseRate"`
	BloodPressure   string       `json:"bloodPressure"`
	RespiratoryRate string       `json:"respiratoryRate"`
	Assessment      string       `json:"assessment"`
	Diagnosis       string       `json:"diagnosis"`
	ActionsTaken    ActionsTaken `json:"actionsTaken"`
	Recommendations string       `json:"recommendations"`
	NurseName       string       `json:"nurseName"`
	NurseSignature  string       `json:"nurseSignature"`
	NurseDate       string       `json:"nurseDate"`
}
