package model

// PushSubscription is a web-push endpoint registered by a device that wants
// job reminders. Stored alongside the record collections so a backup
// snapshot carries it too.
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	P256DH   string `json:"p256dh"`
	Auth     string `json:"auth"`
}
