// README: Reverse geocoding for the "you're around X" label, via Google Maps.
package geocode

import (
	"context"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"

	"placepilot/internal/places"
)

// Service turns coordinates into a short human area label. It is purely
// cosmetic; every failure degrades to an empty label.
type Service struct {
	client *maps.Client
	log    *slog.Logger
}

func NewService(apiKey string, log *slog.Logger) (*Service, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &Service{client: client, log: log}, nil
}

// AreaLabel returns something like "SoHo, New York" for the coordinate,
// or "" when nothing useful comes back.
func (s *Service) AreaLabel(ctx context.Context, loc places.Location) string {
	resp, err := s.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: loc.Latitude, Lng: loc.Longitude},
	})
	if err != nil {
		s.log.Debug("reverse geocode failed", "error", err)
		return ""
	}

	var neighborhood, locality string
	for _, result := range resp {
		for _, comp := range result.AddressComponents {
			for _, t := range comp.Types {
				switch t {
				case "neighborhood", "sublocality":
					if neighborhood == "" {
						neighborhood = comp.LongName
					}
				case "locality":
					if locality == "" {
						locality = comp.LongName
					}
				}
			}
		}
		if neighborhood != "" && locality != "" {
			break
		}
	}

	switch {
	case neighborhood != "" && locality != "":
		return neighborhood + ", " + locality
	case locality != "":
		return locality
	case neighborhood != "":
		return neighborhood
	default:
		return ""
	}
}
