package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	SearchPath      = "/vacancies"
	AreaSuggestPath = "/suggests/areas"
)

// SearchParams are passed to the vacancy search as query parameters.
type SearchParams struct {
	Text string `yaml:"text"`
	// hhparam is custom tag for reflect. Please see below.
	Areas       []int    `hhparam:"area"`
	OrderBy     string   `yaml:"order_by" mapstructure:"order_by"`
	SearchField string   `yaml:"search_field" mapstructure:"search_field"`
	Schedules   []string `hhparam:"schedule"`
	Employment  []string `hhparam:"employment"`
	PerPage     int      `yaml:"per_page" mapstructure:"per_page"`
	Experience  string   `yaml:"experience"`
	Period      uint     `yaml:"period"`
	// Client side only, never sent.
	SkipWithTest bool `hhparam:"-" mapstructure:"skip_with_test"`
}

func (c *Client) search(ctx context.Context, params *SearchParams, limit int) (*Vacancies, error) {
	// Set per_page max as possible. It should be faster.
	if params.PerPage <= 0 || params.PerPage > perPage {
		params.PerPage = perPage
	}
	if limit > 0 && limit < params.PerPage {
		params.PerPage = limit
	}

	q := buildParams(params)
	apiURLSearch := fmt.Sprintf("%s%s", c.APIURL, SearchPath)

	items, err := c.GetItems(ctx, apiURLSearch, q, limit)
	if err != nil && len(items) == 0 {
		return nil, err
	}

	vacancies, decodeErr := decodeVacancies(items)
	if decodeErr != nil {
		return nil, decodeErr
	}

	dropped := vacancies.ExcludeArchived()
	if params.SkipWithTest {
		dropped = append(dropped, vacancies.ExcludeWithTest()...)
	}
	c.logger.Debug("vacancies decoded", zap.Int("kept", vacancies.Len()), zap.Strings("skipped", dropped))

	return vacancies, err
}

func decodeVacancies(items []Item) (*Vacancies, error) {
	var vacancies []*Vacancy
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &vacancies,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decoding vacancies: %w", err)
	}

	for i, v := range vacancies {
		v.raw = items[i]
	}

	return &Vacancies{Items: vacancies}, nil
}

type areaSuggestions struct {
	Items []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"items"`
}

// resolveArea returns the first suggested area id for location, or 0 when hh.ru
// knows no such area.
func (c *Client) resolveArea(ctx context.Context, location string) (int, error) {
	var suggestions areaSuggestions
	q := url.Values{}
	q.Set("text", location)
	if err := c.getJSON(ctx, c.APIURL+AreaSuggestPath, q, &suggestions); err != nil {
		return 0, fmt.Errorf("resolving area %q: %w", location, err)
	}

	for _, item := range suggestions.Items {
		id, err := strconv.Atoi(item.ID)
		if err == nil {
			c.logger.Debug("area resolved", zap.String("location", location), zap.String("area", item.Text), zap.Int("id", id))
			return id, nil
		}
	}

	c.logger.Debug("area not resolved, searching everywhere", zap.String("location", location))
	return 0, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	value := reflect.ValueOf(params).Elem()
	for _, field := range reflect.VisibleFields(value.Type()) {
		// Our custom tag is using here.
		key := field.Tag.Get("hhparam")
		if key == "-" {
			continue
		}
		if key == "" {
			// Failover to default tag if our tag do not exist.
			key = field.Tag.Get("yaml")
		}

		switch v := value.FieldByIndex(field.Index).Interface().(type) {
		case []int:
			for _, item := range v {
				q.Add(key, strconv.Itoa(item))
			}
		case []string:
			for _, item := range v {
				if item = strings.TrimSpace(item); item != "" {
					q.Add(key, item)
				}
			}
		default:
			s := fmt.Sprintf("%v", v)
			if s != "" && s != "0" && s != "false" {
				q.Set(key, s)
			}
		}
	}

	return q
}
