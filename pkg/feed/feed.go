// Package feed fetches the upstream fuel-price feed and normalizes it into
// per (fuel type, region) observations.
package feed

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/timnew/Fuel-price/internal/utils"
	"github.com/timnew/Fuel-price/pkg/fuel"
)

// DefaultURL is the public economy-fuel price feed.
const DefaultURL = "https://projectzerothree.info/api.php?format=json"

// ErrFetch wraps any transport or parse failure. A fetch failure aborts the
// whole run before any history is touched.
var ErrFetch = errors.New("feed fetch failed")

// Observation is one normalized feed record. Index ranks entries within a
// (fuel type, region) group; 1 is the representative entry.
type Observation struct {
	FuelType fuel.FuelType
	Region   fuel.Region
	Index    int
	Point    fuel.PricePoint
}

type Client struct {
	url    string
	client *retryablehttp.Client
}

func NewClient(url string) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = stdlog.New(io.Discard, "", 0)
	retryClient.RetryMax = 3
	return &Client{url: url, client: retryClient}
}

// Fetch downloads and parses the feed. Every observation carries the run
// timestamp so history rows from one batch share it.
func (c *Client) Fetch(now time.Time) ([]Observation, error) {
	res, err := c.client.Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return Parse(string(body), now)
}

// Parse extracts observations from the raw feed JSON. Records with unknown
// region codes or fuel types are skipped; a malformed body is an error.
func Parse(body string, now time.Time) ([]Observation, error) {
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrFetch)
	}
	regions := gjson.Get(body, "regions")
	if !regions.IsArray() {
		return nil, fmt.Errorf("%w: missing regions array", ErrFetch)
	}

	var observations []Observation
	regions.ForEach(func(_, group gjson.Result) bool {
		code := group.Get("region").String()
		region, index, ok := ParseRegionCode(code)
		if !ok {
			utils.Log.Debugf("Skipping unknown region code %q", code)
			return true
		}
		group.Get("prices").ForEach(func(_, price gjson.Result) bool {
			typeName := price.Get("type").String()
			fuelType, ok := fuel.ParseFuelType(typeName)
			if !ok {
				utils.Log.Debugf("Skipping unknown fuel type %q", typeName)
				return true
			}
			observations = append(observations, Observation{
				FuelType: fuelType,
				Region:   region,
				Index:    index,
				Point: fuel.PricePoint{
					Timestamp: now,
					State:     price.Get("state").String(),
					Suburb:    price.Get("suburb").String(),
					Price:     price.Get("price").Float(),
				},
			})
			return true
		})
		return true
	})
	return observations, nil
}

// ParseRegionCode splits a feed region identifier "<RegionCode>[-<index>]".
// A missing index segment means 1, the representative entry.
func ParseRegionCode(code string) (fuel.Region, int, bool) {
	name, indexPart, found := strings.Cut(code, "-")
	region, ok := fuel.ParseRegion(name)
	if !ok {
		return "", 0, false
	}
	if !found {
		return region, 1, true
	}
	index, err := strconv.Atoi(indexPart)
	if err != nil || index < 1 {
		return "", 0, false
	}
	return region, index, true
}
