package domain

// User platform account as stored by the identity service
type User struct {
	ID   string `bson:"_id" json:"user_id"`
	Name string `bson:"name" json:"name"`
	Role string `bson:"role" json:"role"`
}

// DoctorRef entry of a patient's current-doctor list
type DoctorRef struct {
	DoctorID string `bson:"doctor_id" json:"doctor_id"`
}

// PatientProfile patient profile document
type PatientProfile struct {
	ID             string      `bson:"_id" json:"id"`
	UserID         string      `bson:"user_id" json:"user_id"`
	CurrentDoctors []DoctorRef `bson:"current_doctors" json:"current_doctors"`
}

// DoctorProfile doctor profile document
type DoctorProfile struct {
	ID     string `bson:"_id" json:"id"`
	UserID string `bson:"user_id" json:"user_id"`
}
