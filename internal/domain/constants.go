package domain

const (
	RoleUser   = "user"
	RoleArtist = "artist"
	RoleAdmin  = "admin"
)

type Phase string

const (
	PhaseUpcoming   Phase = "upcoming"
	PhaseSubmission Phase = "submission"
	PhaseVoting     Phase = "voting"
	PhaseCompleted  Phase = "completed"
)

const (
	SongStatusPending  = "pending"
	SongStatusApproved = "approved"
	SongStatusRejected = "rejected"
)

const (
	PaymentStatusPending    = "pending"
	PaymentStatusSuccessful = "successful"
	PaymentStatusFailed     = "failed"
)

const (
	PaymentPurposeArtistRegistration = "artist_registration"
	PaymentProviderFlutterwave       = "flutterwave"
)

const DefaultRejectionReason = "Does not meet guidelines"

const MaxLeaderboardLimit = 50

// Audio formats accepted for song uploads.
var AllowedAudioExtensions = []string{".mp3", ".wav", ".ogg", ".m4a"}

var AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}
