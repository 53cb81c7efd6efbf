package templates

// VerifyPageProps drives the device verification form.
type VerifyPageProps struct {
	UserCode string
	Error    string
}

// SuccessPageProps is shown after a device has been authorized.
type SuccessPageProps struct {
	Email    string
	UserCode string
}

// ErrorPageProps contains properties for the error page
type ErrorPageProps struct {
	Error   string
	Message string
}
