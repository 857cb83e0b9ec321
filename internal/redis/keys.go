package redisx

import "fmt"

const ns = "mayhouse:v1"

func KeyBooking(id int64) string {
	return fmt.Sprintf("%s:booking:%d", ns, id)
}

func KeyPlatformConfig() string {
	return ns + ":platform:config"
}

func KeyCreditBalance(addr string) string {
	return fmt.Sprintf("%s:credits:%s", ns, addr)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelBookingEvents() string {
	return ns + ":bookings:events"
}
