package store

import (
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog"
)

// GeoResolver maps client IPs to ISO country codes using a GeoLite2 database.
// A resolver without a database, or a nil resolver, resolves nothing.
type GeoResolver struct {
	db    *geoip2.Reader
	cache sync.Map // ip -> iso code
}

// NewGeoResolver opens the GeoLite2 database at dbPath. An empty path or an
// unreadable file yields a resolver that always returns "".
func NewGeoResolver(dbPath string, log zerolog.Logger) *GeoResolver {
	if dbPath == "" {
		return &GeoResolver{}
	}
	db, err := geoip2.Open(dbPath)
	if err != nil {
		log.Warn().Err(err).Str("path", dbPath).Msg("GeoIP database unavailable; analytics will not be geo-tagged")
		return &GeoResolver{}
	}
	return &GeoResolver{db: db}
}

// Close releases the database.
func (g *GeoResolver) Close() {
	if g != nil && g.db != nil {
		g.db.Close()
	}
}

// CountryISO returns the ISO 3166 country code for ip, or "" when unknown.
func (g *GeoResolver) CountryISO(ipStr string) string {
	if g == nil || g.db == nil {
		return ""
	}

	// 1. Check Cache
	if v, ok := g.cache.Load(ipStr); ok {
		return v.(string)
	}

	// 2. Lookup
	var iso string
	if ip := net.ParseIP(ipStr); ip != nil {
		if record, err := g.db.Country(ip); err == nil {
			iso = record.Country.IsoCode
		}
	}

	g.cache.Store(ipStr, iso)
	return iso
}
