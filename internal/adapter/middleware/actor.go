package middleware

import "regexp"

// HeaderActor carries the acting user's username or external id.
const HeaderActor = "Ax-Actor"

var reActor = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,64}$`)

func ValidActor(s string) bool { return reActor.MatchString(s) }
