// Package patient holds the mock patient record shown by the account and
// health profile views. The record is static and read-only.
package patient

type Record struct {
	Profile            Profile        `json:"profile"`
	MedicalHistory     MedicalHistory `json:"medicalHistory"`
	CurrentMedications []Prescription `json:"currentMedications"`
	Vitals             Vitals         `json:"vitals"`
	RecentLabs         []LabResult    `json:"recentLabs"`
	Lifestyle          Lifestyle      `json:"lifestyle"`
}

type Profile struct {
	Name                 string    `json:"name"`
	DateOfBirth          string    `json:"dob"`
	Age                  int       `json:"age"`
	Gender               string    `json:"gender"`
	BloodType            string    `json:"bloodType"`
	Contact              Contact   `json:"contact"`
	PrimaryCarePhysician string    `json:"primaryCarePhysician"`
	Insurance            Insurance `json:"insurance"`
}

type Contact struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type Insurance struct {
	Provider     string `json:"provider"`
	PolicyNumber string `json:"policyNumber"`
}

type MedicalHistory struct {
	Conditions    []string  `json:"conditions"`
	Allergies     []string  `json:"allergies"`
	Surgeries     []Surgery `json:"surgeries"`
	FamilyHistory []string  `json:"familyHistory"`
}

type Surgery struct {
	Year      int    `json:"year"`
	Procedure string `json:"procedure"`
}

// Prescription is a medication the patient currently takes. Name is free
// text and is not guaranteed to match a catalog record.
type Prescription struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Reason    string `json:"reason"`
}

type Vitals struct {
	LastChecked      string  `json:"lastChecked"`
	BloodPressure    string  `json:"bloodPressure"`
	HeartRate        string  `json:"heartRate"`
	RespiratoryRate  string  `json:"respiratoryRate"`
	Temperature      string  `json:"temperature"`
	OxygenSaturation string  `json:"oxygenSaturation"`
	Height           string  `json:"height"`
	Weight           string  `json:"weight"`
	BMI              float64 `json:"bmi"`
}

type LabResult struct {
	Date           string `json:"date"`
	Test           string `json:"test"`
	Result         string `json:"result"`
	ReferenceRange string `json:"referenceRange"`
	Status         string `json:"status"`
}

type Lifestyle struct {
	Diet               string `json:"diet"`
	Exercise           string `json:"exercise"`
	SmokingStatus      string `json:"smokingStatus"`
	AlcoholConsumption string `json:"alcoholConsumption"`
}

// Default returns a fresh copy of the mock record. Callers may modify it
// freely.
func Default() Record {
	return Record{
		Profile: Profile{
			Name:        "Jane Doe",
			DateOfBirth: "1985-05-15",
			Age:         39,
			Gender:      "Female",
			BloodType:   "O+",
			Contact: Contact{
				Phone:   "555-123-4567",
				Email:   "jane.doe@example.com",
				Address: "123 Health St, Wellness City, 12345",
			},
			PrimaryCarePhysician: "Dr. Emily Carter",
			Insurance: Insurance{
				Provider:     "HealthGuard Inc.",
				PolicyNumber: "HG123456789",
			},
		},
		MedicalHistory: MedicalHistory{
			Conditions: []string{"Hypertension", "Type 2 Diabetes", "Hyperlipidemia", "Asthma (Mild)"},
			Allergies:  []string{"Penicillin (causes rash)", "Pollen (seasonal)"},
			Surgeries: []Surgery{
				{Year: 2018, Procedure: "Appendectomy"},
				{Year: 2021, Procedure: "Knee Arthroscopy (Left)"},
			},
			FamilyHistory: []string{"Heart Disease (Father)", "Diabetes (Mother)", "Hypertension (Father)"},
		},
		CurrentMedications: []Prescription{
			{Name: "Lisinopril", Dosage: "20 mg", Frequency: "Once daily", Reason: "Hypertension"},
			{Name: "Metformin", Dosage: "1000 mg", Frequency: "Twice daily", Reason: "Type 2 Diabetes"},
			{Name: "Atorvastatin", Dosage: "40 mg", Frequency: "Once daily (evening)", Reason: "Hyperlipidemia"},
			{Name: "Albuterol Inhaler", Dosage: "2 puffs", Frequency: "As needed for shortness of breath", Reason: "Asthma"},
		},
		Vitals: Vitals{
			LastChecked:      "2024-07-15",
			BloodPressure:    "130/85 mmHg",
			HeartRate:        "72 bpm",
			RespiratoryRate:  "16 breaths/min",
			Temperature:      "98.6°F (37°C)",
			OxygenSaturation: "98%",
			Height:           `5' 6" (168 cm)`,
			Weight:           "155 lbs (70.3 kg)",
			BMI:              25.0,
		},
		RecentLabs: []LabResult{
			{Date: "2024-06-20", Test: "HbA1c", Result: "6.8%", ReferenceRange: "4.0% - 5.6%", Status: "High"},
			{Date: "2024-06-20", Test: "Lipid Panel - LDL", Result: "95 mg/dL", ReferenceRange: "< 100 mg/dL", Status: "Normal"},
			{Date: "2024-06-20", Test: "Lipid Panel - HDL", Result: "55 mg/dL", ReferenceRange: "> 40 mg/dL", Status: "Normal"},
			{Date: "2024-06-20", Test: "Comprehensive Metabolic Panel (CMP)", Result: "All values within normal limits", ReferenceRange: "N/A", Status: "Normal"},
		},
		Lifestyle: Lifestyle{
			Diet:               "Generally balanced diet, tries to limit processed foods and sugars.",
			Exercise:           "Walks 30-45 minutes, 3-4 times a week.",
			SmokingStatus:      "Non-smoker",
			AlcoholConsumption: "Socially, 1-2 drinks per week.",
		},
	}
}

// AbnormalLabs returns the recent lab results whose status is not Normal.
func (r Record) AbnormalLabs() []LabResult {
	var out []LabResult
	for _, lab := range r.RecentLabs {
		if lab.Status != "Normal" {
			out = append(out, lab)
		}
	}
	return out
}
