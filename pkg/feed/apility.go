package feed

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/honeybadger"
	"github.com/m-mizutani/honeybadger/pkg/errors"
)

// Apility batch APIs wrap entries in {"response": [...]} and omit unknown identifiers.
type apilityResponse[T any] struct {
	Response *[]*T `json:"response"`
}

func decodeApility[T any](feedName string, raw []byte) ([]*T, error) {
	var resp apilityResponse[T]
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.Wrap(err, "Decoding Apility response").
			WithKind(errors.ErrUpstream).With("feed", feedName).With("body", truncate(raw))
	}
	if resp.Response == nil {
		return nil, errors.New("response is missing in Apility payload").
			WithKind(errors.ErrUpstream).With("feed", feedName).With("body", truncate(raw))
	}

	return *resp.Response, nil
}

func missingField(feedName, field string, index int) *errors.Error {
	return errors.New(field+" is missing in Apility entry").
		WithKind(errors.ErrNormalization).With("feed", feedName).With("index", index)
}

type apilityASEntry struct {
	IP string `json:"ip"`
	AS *struct {
		ASN     *number `json:"asn"`
		Name    string  `json:"name"`
		Country string  `json:"country"`
	} `json:"as"`
}

// ApilityAS is adapter of Apility as_batch API
type ApilityAS struct {
	src Source
}

// NewApilityAS is constructor of ApilityAS
func NewApilityAS(src Source) *ApilityAS {
	return &ApilityAS{src: src}
}

// LookupOrigins returns autonomous systems of identifiers Apility knows
func (x *ApilityAS) LookupOrigins(ctx context.Context, identifiers []string) ([]*honeybadger.OriginRecord, error) {
	raw, err := x.src.Fetch(ctx, identifiers)
	if err != nil {
		return nil, err
	}

	entries, err := decodeApility[apilityASEntry](apilityASFeedName, raw)
	if err != nil {
		return nil, err
	}

	records := make([]*honeybadger.OriginRecord, 0, len(entries))
	for i, entry := range entries {
		if entry == nil || entry.IP == "" {
			return nil, missingField(apilityASFeedName, "ip", i)
		}
		if entry.AS == nil {
			return nil, missingField(apilityASFeedName, "as", i).With("ip", entry.IP)
		}
		if entry.AS.ASN == nil {
			return nil, missingField(apilityASFeedName, "as.asn", i).With("ip", entry.IP)
		}
		asn, err := entry.AS.ASN.Int64()
		if err != nil {
			return nil, errors.Wrap(err, "as.asn is not an integer").
				WithKind(errors.ErrNormalization).With("ip", entry.IP).With("asn", string(*entry.AS.ASN))
		}

		records = append(records, &honeybadger.OriginRecord{
			Identifier:  entry.IP,
			Name:        entry.AS.Name,
			NumericID:   asn,
			CountryCode: entry.AS.Country,
		})
	}

	return records, nil
}

type apilityGeoIPEntry struct {
	IP    string `json:"ip"`
	GeoIP *struct {
		Latitude       *number           `json:"latitude"`
		Longitude      *number           `json:"longitude"`
		CountryNames   map[string]string `json:"country_names"`
		ContinentNames map[string]string `json:"continent_names"`
	} `json:"geoip"`
}

// ApilityGeoIP is adapter of Apility geoip_batch API
type ApilityGeoIP struct {
	src Source
}

// NewApilityGeoIP is constructor of ApilityGeoIP
func NewApilityGeoIP(src Source) *ApilityGeoIP {
	return &ApilityGeoIP{src: src}
}

const geoNameLanguage = "en"

// LookupLocations returns geo locations of identifiers Apility knows. Country and continent use
// English names.
func (x *ApilityGeoIP) LookupLocations(ctx context.Context, identifiers []string) ([]*honeybadger.LocationRecord, error) {
	raw, err := x.src.Fetch(ctx, identifiers)
	if err != nil {
		return nil, err
	}

	entries, err := decodeApility[apilityGeoIPEntry](apilityGeoIPFeedName, raw)
	if err != nil {
		return nil, err
	}

	records := make([]*honeybadger.LocationRecord, 0, len(entries))
	for i, entry := range entries {
		if entry == nil || entry.IP == "" {
			return nil, missingField(apilityGeoIPFeedName, "ip", i)
		}
		geo := entry.GeoIP
		if geo == nil {
			return nil, missingField(apilityGeoIPFeedName, "geoip", i).With("ip", entry.IP)
		}
		if geo.Latitude == nil || geo.Longitude == nil {
			return nil, missingField(apilityGeoIPFeedName, "geoip.latitude/longitude", i).With("ip", entry.IP)
		}
		lat, err := geo.Latitude.Float64()
		if err != nil {
			return nil, errors.Wrap(err, "geoip.latitude is not a number").
				WithKind(errors.ErrNormalization).With("ip", entry.IP)
		}
		lon, err := geo.Longitude.Float64()
		if err != nil {
			return nil, errors.Wrap(err, "geoip.longitude is not a number").
				WithKind(errors.ErrNormalization).With("ip", entry.IP)
		}

		country, ok := geo.CountryNames[geoNameLanguage]
		if !ok {
			return nil, missingField(apilityGeoIPFeedName, "geoip.country_names.en", i).With("ip", entry.IP)
		}
		continent, ok := geo.ContinentNames[geoNameLanguage]
		if !ok {
			return nil, missingField(apilityGeoIPFeedName, "geoip.continent_names.en", i).With("ip", entry.IP)
		}

		records = append(records, &honeybadger.LocationRecord{
			Identifier: entry.IP,
			Latitude:   lat,
			Longitude:  lon,
			Country:    country,
			Continent:  continent,
		})
	}

	return records, nil
}

type apilityBadIPEntry struct {
	IP         string   `json:"ip"`
	Blacklists []string `json:"blacklists"`
}

// ApilityBadIP is adapter of Apility badip_batch API
type ApilityBadIP struct {
	src Source
}

// NewApilityBadIP is constructor of ApilityBadIP
func NewApilityBadIP(src Source) *ApilityBadIP {
	return &ApilityBadIP{src: src}
}

// LookupMemberships returns blacklists each identifier is on. An entry without blacklists
// becomes a record with empty Tags.
func (x *ApilityBadIP) LookupMemberships(ctx context.Context, identifiers []string) ([]*honeybadger.MembershipRecord, error) {
	raw, err := x.src.Fetch(ctx, identifiers)
	if err != nil {
		return nil, err
	}

	entries, err := decodeApility[apilityBadIPEntry](apilityBadIPFeedName, raw)
	if err != nil {
		return nil, err
	}

	records := make([]*honeybadger.MembershipRecord, 0, len(entries))
	for i, entry := range entries {
		if entry == nil || entry.IP == "" {
			return nil, missingField(apilityBadIPFeedName, "ip", i)
		}

		tags := make([]string, len(entry.Blacklists))
		copy(tags, entry.Blacklists)
		records = append(records, &honeybadger.MembershipRecord{
			Identifier: entry.IP,
			Tags:       tags,
		})
	}

	return records, nil
}
