package response

// Envelope is the standard JSON body for every API response
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Meta    *Pagination       `json:"meta,omitempty"`
}

// Pagination is the envelope metadata for paginated collections
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	HasMore     bool  `json:"has_more"`
}

// NewPagination derives the pagination envelope from page inputs and a total count
func NewPagination(page, perPage int, total int64) *Pagination {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}
	return &Pagination{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
		HasMore:     page < lastPage,
	}
}

// OK wraps data in a success envelope
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// OKMessage wraps a human-readable message in a success envelope
func OKMessage(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// Paginated wraps data plus pagination metadata in a success envelope
func Paginated(data any, meta *Pagination) Envelope {
	return Envelope{Success: true, Data: data, Meta: meta}
}

// Fail wraps an error message in a failure envelope
func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message, Error: message}
}

// FailFields wraps an error message plus field-level errors for form display
func FailFields(message string, fields map[string]string) Envelope {
	return Envelope{Success: false, Message: message, Error: message, Errors: fields}
}
