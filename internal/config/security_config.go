package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
	SecurityAdmin                       // Access token with ADMIN role required
)

const RoleAdmin = "ADMIN"

// EndpointSecurityConfig maps gRPC full method names and HTTP route names
// to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// gRPC health + reflection
	"/grpc.health.v1.Health/Check":                                   SecurityPublic,
	"/grpc.health.v1.Health/Watch":                                   SecurityPublic,
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityPublic,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityPublic,

	// ReservationService
	"/hotel.reservation.v1.ReservationService/Hold":       SecurityAccess,
	"/hotel.reservation.v1.ReservationService/Confirm":    SecurityAccess,
	"/hotel.reservation.v1.ReservationService/Cancel":     SecurityAccess,
	"/hotel.reservation.v1.ReservationService/Get":        SecurityAccess,
	"/hotel.reservation.v1.ReservationService/ListByUser": SecurityAccess,

	// HTTP routes (mux route names)
	"health":               SecurityPublic,
	"rooms.availability":   SecurityPublic,
	"reservations.hold":    SecurityAccess,
	"reservations.get":     SecurityAccess,
	"reservations.confirm": SecurityAccess,
	"reservations.cancel":  SecurityAccess,
	"reservations.my":      SecurityAccess,
	"reservations.by_user": SecurityAdmin,
	"inventory.provision":  SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given method or route
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
