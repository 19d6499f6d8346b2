package routeservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/paulmach/orb"

	"github.com/sirensim/sirensim/pkg/roadnet"
)

var (
	errRateLimited     = errors.New("routing service rate limited")
	errMalformedResult = errors.New("malformed routing response")
)

// Wire format of the OSRM-compatible routing API.
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// fetchOnce performs a single request against the routing API. Anything
// other than code "Ok" with at least two coordinates counts as a failure
// for retry and breaker purposes.
func (s *Service) fetchOnce(ctx context.Context, from orb.Point, to orb.Point) (*roadnet.Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		s.host, from[0], from[1], to[0], to[1])

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	response, err := s.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusTooManyRequests {
		return nil, errRateLimited
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing service returned status %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedResult, err)
	}

	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return nil, fmt.Errorf("%w: code %q", errMalformedResult, parsed.Code)
	}

	coordinates := parsed.Routes[0].Geometry.Coordinates
	if len(coordinates) < 2 {
		return nil, fmt.Errorf("%w: %d coordinates", errMalformedResult, len(coordinates))
	}

	waypoints := make([]orb.Point, 0, len(coordinates))
	for _, pair := range coordinates {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: bad coordinate pair", errMalformedResult)
		}

		waypoints = append(waypoints, orb.Point{pair[0], pair[1]})
	}

	return &roadnet.Route{
		Waypoints: waypoints,
		Distance:  parsed.Routes[0].Distance,
	}, nil
}
