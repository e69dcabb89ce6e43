package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"noit-gateway/internal/auth"
	"noit-gateway/internal/session"
	"noit-gateway/internal/shape"
	"noit-gateway/internal/upstream"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ParamSource says where a required parameter arrives on the inbound
// request.
type ParamSource int

const (
	FromQuery ParamSource = iota
	FromBody
)

// Param is a required inbound parameter. Missing is the client-facing
// message relayed when it is absent.
type Param struct {
	Name    string
	In      ParamSource
	Missing string
}

// Endpoint declares one gateway route: where it listens, where it forwards,
// which parameters it needs, what shape the upstream answer must have, and
// how (if at all) the validated payload is remapped before relay. The whole
// per-endpoint pipeline is this data plus Handler.
type Endpoint struct {
	Name     string
	Method   string
	Route    string
	Upstream string // path template with {param} placeholders
	Resource string // human-readable name used in upstream error messages
	Params   []Param
	Shape    *shape.Shape
	Remap    func(payload any) any
}

// Gateway owns the shared collaborators of every endpoint handler. It holds
// no per-request state; each handler invocation works on its own locals.
type Gateway struct {
	upstream  *upstream.Client
	inspector *auth.TokenInspector
	logger    *zap.Logger
}

func New(up *upstream.Client, inspector *auth.TokenInspector, log *zap.Logger) *Gateway {
	return &Gateway{
		upstream:  up,
		inspector: inspector,
		logger:    log,
	}
}

// Handler builds the full request pipeline for one endpoint:
// extract session → invoke upstream → validate → relay, with every failure
// short-circuiting through the error translator. The relay calls at the
// bottom are the only writes to the outbound stream.
func (g *Gateway) Handler(ep Endpoint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := sessionFrom(c)
		if !sess.Authenticated() {
			return g.reject(c, ep, AuthRequired(sess.CookieNames()))
		}
		if g.inspector != nil && g.inspector.Expired(sess.Token) {
			return g.reject(c, ep, TokenExpired())
		}

		values, body, gerr := g.collectParams(c, ep)
		if gerr != nil {
			return g.reject(c, ep, gerr)
		}

		upstreamPath, requestedID := expandTemplate(ep, values)

		resp, err := g.upstream.Do(c.UserContext(), upstream.Request{
			Method: ep.Method,
			Path:   upstreamPath,
			Token:  sess.Token,
			Body:   body,
		})
		if err != nil {
			return g.reject(c, ep, translateTransport(err))
		}

		if resp.Status < 200 || resp.Status >= 300 {
			return g.reject(c, ep, FromUpstreamStatus(ep.Resource, requestedID, resp.Status, resp.Body))
		}

		result := shape.Validate(resp.Body, ep.Shape)
		switch result.Outcome {
		case shape.HardFailure:
			g.logger.Error("upstream response failed validation",
				zap.String("endpoint", ep.Name),
				zap.String("reason", result.Reason),
			)
			return g.reject(c, ep, InvalidShape(result.Reason))
		case shape.SoftWarning:
			g.logger.Warn("upstream response has soft inconsistencies",
				zap.String("endpoint", ep.Name),
				zap.Strings("warnings", result.Warnings),
			)
		}

		payload := result.Payload
		if ep.Remap != nil {
			payload = ep.Remap(payload)
		}

		return g.respond(c, payload)
	}
}

// collectParams enforces required parameters before any network I/O. For
// body endpoints the inbound JSON is parsed once; parameters consumed by
// the upstream path template are stripped before the body is forwarded.
func (g *Gateway) collectParams(c *fiber.Ctx, ep Endpoint) (map[string]string, []byte, *Error) {
	values := make(map[string]string, len(ep.Params))

	var bodyDoc map[string]any
	hasBody := ep.Method != http.MethodGet && len(c.Body()) > 0
	if hasBody {
		if err := json.Unmarshal(c.Body(), &bodyDoc); err != nil {
			return nil, nil, BadRequest("Cuerpo de la solicitud inválido: se esperaba JSON")
		}
	}

	for _, p := range ep.Params {
		var value string
		switch p.In {
		case FromQuery:
			value = c.Query(p.Name)
		case FromBody:
			if s, ok := bodyDoc[p.Name].(string); ok {
				value = s
			}
		}

		if value == "" {
			return nil, nil, MissingParam(p.Missing, p.Name, expectedForm(p))
		}
		values[p.Name] = value
	}

	if !hasBody {
		return values, nil, nil
	}

	for _, p := range ep.Params {
		if p.In == FromBody && strings.Contains(ep.Upstream, "{"+p.Name+"}") {
			delete(bodyDoc, p.Name)
		}
	}

	body, err := json.Marshal(bodyDoc)
	if err != nil {
		return nil, nil, Internal(fmt.Errorf("failed to rebuild upstream body: %w", err))
	}
	return values, body, nil
}

// respond is the success relay: the validated (and possibly remapped)
// payload goes out as JSON with status 200.
func (g *Gateway) respond(c *fiber.Ctx, payload any) error {
	return c.Status(fiber.StatusOK).JSON(payload)
}

// reject is the failure relay: every failure leaves through here as the
// uniform error envelope.
func (g *Gateway) reject(c *fiber.Ctx, ep Endpoint, gerr *Error) error {
	if id, ok := c.Locals("request_id").(string); ok {
		gerr.Envelope.RequestID = id
	}

	g.logger.Info("request rejected",
		zap.String("endpoint", ep.Name),
		zap.Int("status", gerr.Status),
		zap.String("error", gerr.Envelope.Error),
	)

	return c.Status(gerr.Status).JSON(gerr.Envelope)
}

func sessionFrom(c *fiber.Ctx) *session.Session {
	if sess, ok := c.Locals("session").(*session.Session); ok {
		return sess
	}
	return session.Parse(c.Get(fiber.HeaderCookie))
}

func expandTemplate(ep Endpoint, values map[string]string) (path, requestedID string) {
	path = ep.Upstream
	for _, p := range ep.Params {
		placeholder := "{" + p.Name + "}"
		if !strings.Contains(path, placeholder) {
			continue
		}
		path = strings.ReplaceAll(path, placeholder, url.PathEscape(values[p.Name]))
		if requestedID == "" {
			requestedID = values[p.Name]
		}
	}
	return path, requestedID
}

func expectedForm(p Param) string {
	if p.In == FromBody {
		return fmt.Sprintf(`{"%s": "<valor>"}`, p.Name)
	}
	return fmt.Sprintf("?%s=<valor>", p.Name)
}

func translateTransport(err error) *Error {
	if errors.Is(err, upstream.ErrTimeout) {
		return Timeout()
	}
	if errors.Is(err, upstream.ErrUnavailable) {
		return Unavailable()
	}
	return Internal(err)
}
