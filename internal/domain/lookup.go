package domain

// Teacher is a loan recipient. Managed elsewhere; read-only here.
type Teacher struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	DNI      string `json:"dni,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Classroom is an optional loan destination.
type Classroom struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// Category groups equipment entries.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
