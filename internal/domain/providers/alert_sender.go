package providers

// AlertSender delivers short out-of-band messages to duty staff. The message
// ID of the delivery channel is returned for logging.
type AlertSender interface {
	SendText(to, body string) (string, error)
}
