package types

// AppVersion is the version of hotfixer itself, overwritten at build time.
var AppVersion = "dev"
