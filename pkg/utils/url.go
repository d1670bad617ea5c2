package utils

import (
	"net/url"
	"regexp"
	"strings"
)

// recordIDPattern matches the 24-hex-character record id the store appends to
// its record URLs.
var recordIDPattern = regexp.MustCompile(`([a-f0-9]{24})$`)

// NormalizeRecordID accepts either a bare record id or a full record URL and
// returns the record id. Inputs without a recognizable id tail are returned
// unchanged so the store can reject them itself.
func NormalizeRecordID(s string) string {
	if m := recordIDPattern.FindString(strings.TrimSpace(s)); m != "" {
		return m
	}
	return s
}

// RecordURL builds the canonical record-store URL for a record.
func RecordURL(baseURL, appID, recordID string) string {
	return strings.TrimSuffix(baseURL, "/") + "/apps/" + appID + "/records/" + recordID
}

// trackingParams are query parameters that carry tracking state rather than
// addressing. Prefix entries end with "_" and match any parameter with that
// prefix.
var trackingParams = map[string]bool{
	"fbclid":   true,
	"gclid":    true,
	"dclid":    true,
	"msclkid":  true,
	"mc_cid":   true,
	"mc_eid":   true,
	"igshid":   true,
	"twclid":   true,
	"yclid":    true,
	"ref_src":  true,
	"ref_url":  true,
	"_hsenc":   true,
	"_hsmi":    true,
	"vero_id":  true,
	"wickedid": true,
}

// StripTrackingParams removes known tracking query parameters (utm_* and the
// usual click identifiers) from a URL. Malformed URLs are returned unchanged.
func StripTrackingParams(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := parsed.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(key, "utm_") || trackingParams[strings.ToLower(key)] {
			query.Del(key)
			changed = true
		}
	}
	if !changed {
		return rawURL
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}
