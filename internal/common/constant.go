package common

// DefaultRole is assigned to every account created through signup.
const DefaultRole = "user"

// ServiceName identifies this service in logs and outbound service tokens.
const ServiceName = "certhub"
