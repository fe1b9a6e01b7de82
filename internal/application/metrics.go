package application

import "expvar"

// Counters published on /debug/vars.
var (
	registrations     = expvar.NewInt("registrations")
	logins            = expvar.NewInt("logins")
	usersCreated      = expvar.NewInt("users_created")
	expensesSubmitted = expvar.NewInt("expenses_submitted")
	expensesDecided   = expvar.NewMap("expenses_decided")
)
