package lang

var english = map[string]string{
	TitleForgotPassword: "Forgot Password",
	TitleResetPassword:  "Reset Password",
	TitleHome:           "Home",
	TitleError:          "Something went wrong",

	ResponsePasswordRequest: "Please check your e-mail to continue with the password reset process.",
	ResponsePasswordUpdate:  "Your password has been updated. You may now sign in.",

	EmailResetSubject:     "Reset your password",
	EmailCompletedSubject: "Your password has been changed",

	"reminders.user":      "We can't find a user with that e-mail address.",
	"reminders.token":     "This password reset token is invalid.",
	"reminders.password":  "Passwords must be at least eight characters, mix upper and lower case with a digit, and match the confirmation.",
	"reminders.throttled": "Please wait before requesting another password reset.",

	ValidationRequired:  "The {0} field is required.",
	ValidationEmail:     "The {0} must be a valid e-mail address.",
	ValidationConfirmed: "The {0} confirmation does not match.",
	ValidationPassword:  "The {0} must be at least eight characters and contain an upper case letter, a lower case letter and a digit.",
	ValidationMin:       "The {0} must be at least {1} characters.",
	ValidationMax:       "The {0} may not be greater than {1} characters.",
}
