package chatloop

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/casualjim/chatloop/internal/registry"
	"github.com/casualjim/chatloop/provider"
	"github.com/casualjim/chatloop/provider/anthropic"
	"github.com/casualjim/chatloop/provider/openai"
	"github.com/casualjim/chatloop/tool"
	"github.com/fogfish/opts"
	oaioption "github.com/openai/openai-go/option"
)

// Router identifiers accepted by New. The set is closed: anything else
// fails at construction, before any network activity.
const (
	RouterOpenAIChat       = "openai-chat"
	RouterAnthropic        = "anthropic"
	RouterDeepseekOpenAI   = "deepseek-openai"
	RouterMinimaxAnthropic = "minimax-anthropic"
)

// UnsupportedRouterError reports a router identifier outside the supported
// set.
type UnsupportedRouterError struct {
	Router string
	Known  []string
}

func (e *UnsupportedRouterError) Error() string {
	return fmt.Sprintf("unsupported router %q, supported routers: %s", e.Router, strings.Join(e.Known, ", "))
}

// Settings holds the tunable parts of a Model, applied through Options.
type Settings struct {
	// Stream selects incremental SSE delivery from the provider. On by
	// default.
	Stream bool
	// ExtraOptions are free-form request-body overrides passed through to
	// the provider untouched.
	ExtraOptions map[string]any
	// HTTPClient overrides the transport's HTTP client.
	HTTPClient *http.Client
	// Adapter bypasses adapter construction entirely. Used by tests and by
	// callers with custom transports.
	Adapter provider.Adapter
}

// Option configures a Model during construction.
type Option = opts.Option[Settings]

var (
	// WithStream toggles incremental streaming delivery.
	WithStream = opts.ForName[Settings, bool]("Stream")
	// WithExtraOptions sets free-form request-body overrides.
	WithExtraOptions = opts.ForName[Settings, map[string]any]("ExtraOptions")
	// WithHTTPClient overrides the HTTP client used by the provider
	// transport.
	WithHTTPClient = opts.ForName[Settings, *http.Client]("HTTPClient")
	// WithAdapter substitutes the provider adapter wholesale.
	WithAdapter = opts.ForName[Settings, provider.Adapter]("Adapter")
)

type adapterConfig struct {
	baseURL    string
	apiKey     string
	model      string
	stream     bool
	extra      map[string]any
	httpClient *http.Client
}

type routerEntry struct {
	build  func(cfg adapterConfig) provider.Adapter
	policy historyPolicy
}

var routers = registry.New[routerEntry]()

func init() {
	routers.Add(RouterOpenAIChat, routerEntry{build: buildOpenAI, policy: standardPolicy{}})
	routers.Add(RouterDeepseekOpenAI, routerEntry{build: buildOpenAI, policy: reasoningExclusionPolicy{}})
	routers.Add(RouterAnthropic, routerEntry{build: buildAnthropic, policy: standardPolicy{}})
	routers.Add(RouterMinimaxAnthropic, routerEntry{build: buildAnthropic, policy: blockReplayPolicy{}})
}

func buildOpenAI(cfg adapterConfig) provider.Adapter {
	var reqOpts []oaioption.RequestOption
	if cfg.httpClient != nil {
		reqOpts = append(reqOpts, oaioption.WithHTTPClient(cfg.httpClient))
	}
	return openai.New(openai.Config{
		BaseURL:      cfg.baseURL,
		APIKey:       cfg.apiKey,
		Model:        cfg.model,
		Stream:       cfg.stream,
		ExtraOptions: cfg.extra,
	}, reqOpts...)
}

func buildAnthropic(cfg adapterConfig) provider.Adapter {
	acfg := anthropic.Config{
		BaseURL:      cfg.baseURL,
		APIKey:       cfg.apiKey,
		Model:        cfg.model,
		Stream:       cfg.stream,
		ExtraOptions: cfg.extra,
	}
	if cfg.httpClient != nil {
		acfg.HTTPClient = cfg.httpClient
	}
	return anthropic.New(acfg)
}

// Model is one configured provider endpoint plus the router-selected
// adapter and history policy. It carries no conversation state; the same
// Model can drive many histories.
type Model struct {
	router  string
	name    string
	adapter provider.Adapter
	policy  historyPolicy
	tools   *tool.Registry
}

// New builds a Model for the given router, endpoint, credential, and model
// name. The router must be one of the Router constants.
func New(router, baseURL, apiKey, modelName string, options ...Option) (*Model, error) {
	entry, ok := routers.Get(router)
	if !ok {
		return nil, &UnsupportedRouterError{Router: router, Known: routers.Names()}
	}

	settings := Settings{Stream: true}
	if err := opts.Apply(&settings, options); err != nil {
		return nil, err
	}

	adapter := settings.Adapter
	if adapter == nil {
		adapter = entry.build(adapterConfig{
			baseURL:    baseURL,
			apiKey:     apiKey,
			model:      modelName,
			stream:     settings.Stream,
			extra:      settings.ExtraOptions,
			httpClient: settings.HTTPClient,
		})
	}

	return &Model{
		router:  router,
		name:    modelName,
		adapter: adapter,
		policy:  entry.policy,
		tools:   tool.NewRegistry(),
	}, nil
}

// Router reports the router identifier this model was built with.
func (m *Model) Router() string { return m.router }

// ToolInit replaces the advertised tool set wholesale and pushes it to the
// adapter. Calling it again overwrites the previous set; there is no merge.
func (m *Model) ToolInit(defs ...tool.Definition) {
	m.tools = tool.NewRegistry(defs...)
	if tu, ok := m.adapter.(provider.ToolUser); ok {
		tu.UseTools(m.tools.Definitions())
	}
}

// Tools returns the currently advertised tool definitions in order.
func (m *Model) Tools() []tool.Definition {
	return m.tools.Definitions()
}
