package lang

// Translation keys used outside of broker failure reasons.
const (
	TitleForgotPassword = "orchestra/foundation::title.forgot-password"
	TitleResetPassword  = "orchestra/foundation::title.reset-password"
	TitleHome           = "orchestra/foundation::title.home"
	TitleError          = "orchestra/foundation::title.error"

	ResponsePasswordRequest = "orchestra/foundation::response.account.password.request"
	ResponsePasswordUpdate  = "orchestra/foundation::response.account.password.update"

	EmailResetSubject     = "orchestra/foundation::email.forgot.request"
	EmailCompletedSubject = "orchestra/foundation::email.forgot.reset"

	ValidationRequired  = "validation.required"
	ValidationEmail     = "validation.email"
	ValidationConfirmed = "validation.confirmed"
	ValidationPassword  = "validation.password"
	ValidationMin       = "validation.min"
	ValidationMax       = "validation.max"
)
