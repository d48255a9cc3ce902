// CLAUDE:SUMMARY Parses slotwatch YAML profile files (order-preserving options, legacy keys) and resolves the config path via XDG.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/slotwatch/horosafe"
)

// XDGName is the config file looked up under the XDG config directories
// when no explicit path is given.
const XDGName = "slotwatch/config.yaml"

// rawProfile is the on-disk shape of one profile. Options and Sweep stay as
// nodes so their key order survives decoding.
type rawProfile struct {
	URL         string            `yaml:"url"`
	Options     yaml.Node         `yaml:"options"`
	Selectors   map[string]string `yaml:"selectors"`
	Sweep       yaml.Node         `yaml:"sweep"`
	Result      string            `yaml:"result"`
	Unavailable stringList        `yaml:"unavailable"`
	Gate        Gate              `yaml:"gate"`
	Notify      NotifyConfig      `yaml:"notify"`
	Block       stringList        `yaml:"block_resources"`

	// Keys of the original iDATA checker config.
	CityValue       string     `yaml:"city_value"`
	OfficeValue     string     `yaml:"office_value"`
	ApplicationType string     `yaml:"getapplicationtype"`
	OfficeType      stringList `yaml:"office_type"`
	TelegramToken   string     `yaml:"telegram_token"`
	TelegramChatID  string     `yaml:"telegram_chat_id"`
}

// stringList accepts either a scalar or a sequence of scalars.
type stringList []string

func (s *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*s = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		var out []string
		if err := value.Decode(&out); err != nil {
			return err
		}
		*s = out
		return nil
	}
	return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
}

// ResolvePath returns the config file to read. An explicit path is used as
// given. Otherwise p is used when it exists, then the XDG config directories
// are searched for slotwatch/config.yaml; failing both, p is returned so the
// loader reports the missing file under the name the user expects.
func ResolvePath(p string, explicit bool) string {
	if explicit {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	if found, err := xdg.SearchConfigFile(XDGName); err == nil {
		return found
	}
	return p
}

// LoadProfile reads the YAML file at path and returns the profile stored
// under key.
func LoadProfile(path, key string) (*CheckConfig, error) {
	profiles, err := readFile(path)
	if err != nil {
		return nil, err
	}

	node, ok := profiles[key]
	if !ok {
		return nil, &ConfigError{
			Path:    path,
			Profile: key,
			Reason:  fmt.Sprintf("profile not found (known: %v)", names(profiles)),
		}
	}

	var raw rawProfile
	if err := node.Decode(&raw); err != nil {
		return nil, &ConfigError{Path: path, Profile: key, Reason: "decode profile", Err: err}
	}

	cfg, err := raw.build(key)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// ProfileNames lists the profile keys of the file at path, sorted.
func ProfileNames(path string) ([]string, error) {
	profiles, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return names(profiles), nil
}

func readFile(path string) (map[string]yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "read file", Err: err}
	}
	var profiles map[string]yaml.Node
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, &ConfigError{Path: path, Reason: "parse yaml", Err: err}
	}
	return profiles, nil
}

func names(profiles map[string]yaml.Node) []string {
	out := make([]string, 0, len(profiles))
	for k := range profiles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *rawProfile) build(name string) (*CheckConfig, error) {
	cfg := &CheckConfig{
		Name:        name,
		URL:         r.URL,
		Result:      r.Result,
		Unavailable: r.Unavailable,
		Gate:        r.Gate,
		Notify:      r.Notify,
	}
	for _, b := range r.Block {
		cfg.BlockResources = append(cfg.BlockResources, strings.ToLower(strings.TrimSpace(b)))
	}

	legacy := false
	for _, kv := range [][2]string{
		{"city", r.CityValue},
		{"office", r.OfficeValue},
		{"getapplicationtype", r.ApplicationType},
	} {
		if kv[1] == "" {
			continue
		}
		legacy = true
		cfg.Selections = append(cfg.Selections, Selection{
			Field: kv[0], Text: kv[1], Selector: SelectorFor(kv[0], r.Selectors),
		})
	}

	opts, err := orderedPairs(name, "options", &r.Options)
	if err != nil {
		return nil, err
	}
	for _, kv := range opts {
		text, err := scalar(name, kv.key, kv.value)
		if err != nil {
			return nil, err
		}
		cfg.Selections = append(cfg.Selections, Selection{
			Field: kv.key, Text: text, Selector: SelectorFor(kv.key, r.Selectors),
		})
	}

	dims, err := orderedPairs(name, "sweep", &r.Sweep)
	if err != nil {
		return nil, err
	}
	for _, kv := range dims {
		var values stringList
		if err := kv.value.Decode(&values); err != nil {
			return nil, &ConfigError{Profile: name, Field: kv.key, Reason: "sweep values", Err: err}
		}
		cfg.Sweep = append(cfg.Sweep, SweepDim{
			Field: kv.key, Selector: SelectorFor(kv.key, r.Selectors), Values: values,
		})
	}

	if legacy {
		offices := r.OfficeType
		if len(offices) == 0 {
			offices = stringList{"STANDART"}
		}
		cfg.Sweep = append([]SweepDim{{
			Field: "officetype", Selector: SelectorFor("officetype", r.Selectors), Values: offices,
		}}, cfg.Sweep...)
	}

	if cfg.Notify.Telegram == nil && r.TelegramToken != "" {
		cfg.Notify.Telegram = &TelegramConfig{Token: r.TelegramToken, ChatID: r.TelegramChatID}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *CheckConfig) validate() error {
	fail := func(field, reason string, err error) error {
		return &ConfigError{Profile: c.Name, Field: field, Reason: reason, Err: err}
	}

	if err := horosafe.CheckURL(c.URL); err != nil {
		return fail("url", "invalid target URL", err)
	}
	if len(c.Selections) == 0 && len(c.Sweep) == 0 {
		return fail("options", "profile defines no options", nil)
	}
	for _, s := range c.Selections {
		if s.Text == "" {
			return fail(s.Field, "empty option text", nil)
		}
	}
	for _, d := range c.Sweep {
		if len(d.Values) == 0 {
			return fail(d.Field, "sweep has no values", nil)
		}
		for _, v := range d.Values {
			if v == "" {
				return fail(d.Field, "empty sweep value", nil)
			}
		}
	}
	for _, b := range c.BlockResources {
		if !slices.Contains(ResourceTypes, b) {
			return fail("block_resources", fmt.Sprintf("unknown resource type %q (want one of %v)", b, ResourceTypes), nil)
		}
	}
	if t := c.Notify.Telegram; t != nil && (t.Token == "" || t.ChatID == "") {
		return fail("notify.telegram", "token and chat_id are required", nil)
	}
	if w := c.Notify.Webhook; w != nil {
		if err := horosafe.CheckURL(w.URL); err != nil {
			return fail("notify.webhook", "invalid webhook URL", err)
		}
	}
	if e := c.Notify.Email; e != nil && (e.Server == "" || e.From == "" || len(e.To) == 0) {
		return fail("notify.email", "server, from and to are required", nil)
	}
	return nil
}

type pair struct {
	key   string
	value *yaml.Node
}

// orderedPairs walks a mapping node in document order. An absent node
// yields no pairs.
func orderedPairs(profile, field string, n *yaml.Node) ([]pair, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, &ConfigError{Profile: profile, Field: field,
			Reason: fmt.Sprintf("line %d: expected a mapping", n.Line)}
	}
	out := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, pair{key: n.Content[i].Value, value: n.Content[i+1]})
	}
	return out, nil
}

func scalar(profile, field string, n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", &ConfigError{Profile: profile, Field: field,
			Reason: fmt.Sprintf("line %d: expected a single option text", n.Line)}
	}
	return n.Value, nil
}
