package cache

// Key helpers - the single place the informal key-naming protocol lives,
// so collaborator keys do not drift apart across callers. The cache itself
// does not enforce any of this.

// OTPKey is the one-time verification code issued to an email address.
func OTPKey(email string) string { return "otp:" + email }

// OTPLimitKey counts OTP requests per email address.
func OTPLimitKey(email string) string { return "otp_limit:" + email }

// LoginLimitKey counts login attempts per device fingerprint.
func LoginLimitKey(fingerprint string) string { return "login_limit:" + fingerprint }

// MsgLimitKey counts messages sent per student and day.
func MsgLimitKey(studentID string) string { return "msg_limit:" + studentID }

// StudentStatsKey caches a student's derived statistics.
func StudentStatsKey(studentID string) string { return "student_stats:" + studentID }

// StudentResultsKey caches a student's quiz result listing.
func StudentResultsKey(studentID string) string { return "student_results:" + studentID }

// Shared singleton keys.
const (
	QuizStatusLocksKey = "quiz_status_locks"
	PublicStatsKey     = "public_stats"
)
