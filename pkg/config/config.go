// Package config loads typed run settings from viper and validates the
// subscriber list.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/timnew/Fuel-price/pkg/fuel"
)

// Subscriber is one validated digest recipient.
type Subscriber struct {
	Email     string
	FuelTypes []fuel.FuelType
	HomeState fuel.Region // empty when the subscriber has none
	ForceSend bool
}

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Settings holds everything one batch run needs.
type Settings struct {
	AlertThreshold float64
	HistoryLimit   int
	FeedURL        string
	DBPath         string
	SMTP           SMTPSettings
	Subscribers    []Subscriber
}

// MalformedSubscriberError marks one unparsable subscriber entry. The entry
// is skipped; the rest of the run proceeds.
type MalformedSubscriberError struct {
	Index  int
	Reason string
}

func (e *MalformedSubscriberError) Error() string {
	return fmt.Sprintf("subscriber %d: %s", e.Index, e.Reason)
}

// Load reads settings from v. Invalid subscriber entries are returned as
// errors alongside the valid remainder; they never fail the load.
func Load(v *viper.Viper) (Settings, []error) {
	settings := Settings{
		AlertThreshold: v.GetFloat64("alert_threshold"),
		HistoryLimit:   v.GetInt("history_limit"),
		FeedURL:        v.GetString("feed.url"),
		DBPath:         v.GetString("dbpath"),
		SMTP: SMTPSettings{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
		},
	}
	subscribers, errs := parseSubscribers(v.Get("subscribers"))
	settings.Subscribers = subscribers
	return settings, errs
}

func parseSubscribers(raw interface{}) ([]Subscriber, []error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, []error{&MalformedSubscriberError{Index: -1, Reason: "subscribers must be a list"}}
	}
	var subscribers []Subscriber
	var errs []error
	for i, entry := range list {
		sub, err := parseSubscriber(i, entry)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		subscribers = append(subscribers, sub)
	}
	return subscribers, errs
}

func parseSubscriber(index int, entry interface{}) (Subscriber, error) {
	fields, ok := entry.(map[string]interface{})
	if !ok {
		return Subscriber{}, &MalformedSubscriberError{Index: index, Reason: "entry is not a mapping"}
	}

	email, _ := fields["email"].(string)
	if email == "" || !strings.Contains(email, "@") {
		return Subscriber{}, &MalformedSubscriberError{Index: index, Reason: "missing or invalid email"}
	}

	rawTypes, ok := fields["fuel_types"].([]interface{})
	if !ok || len(rawTypes) == 0 {
		return Subscriber{}, &MalformedSubscriberError{Index: index, Reason: "fuel_types must be a non-empty list"}
	}
	fuelTypes := make([]fuel.FuelType, 0, len(rawTypes))
	for _, rt := range rawTypes {
		name, _ := rt.(string)
		fuelType, ok := fuel.ParseFuelType(name)
		if !ok {
			return Subscriber{}, &MalformedSubscriberError{Index: index, Reason: fmt.Sprintf("unknown fuel type %q", name)}
		}
		fuelTypes = append(fuelTypes, fuelType)
	}

	sub := Subscriber{Email: email, FuelTypes: fuelTypes}

	if rawState, present := fields["home_state"]; present {
		name, _ := rawState.(string)
		region, ok := fuel.ParseRegion(name)
		if !ok || region == fuel.All {
			return Subscriber{}, &MalformedSubscriberError{Index: index, Reason: fmt.Sprintf("invalid home state %q", name)}
		}
		sub.HomeState = region
	}

	if rawForce, present := fields["force_send"]; present {
		force, ok := rawForce.(bool)
		if !ok {
			return Subscriber{}, &MalformedSubscriberError{Index: index, Reason: "force_send must be a boolean"}
		}
		sub.ForceSend = force
	}

	return sub, nil
}
