package aragonos

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/bindings"
	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/dao"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultRegistry is the APM registry used when an identifier names none.
const DefaultRegistry = "aragonpm.eth"

var (
	appIdentifierPattern   = regexp.MustCompile(`^([a-z0-9-]+)((?:\.[a-z0-9-]+)+)?(?::([a-z0-9-]+))?$`)
	semanticVersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// appIdentifier is a parsed <app>[.<registry>][:<label>].
type appIdentifier struct {
	Raw      string
	App      string
	Registry string
	Label    string
}

// RepoName is the ENS name of the app's repo.
func (id appIdentifier) RepoName() string {
	return id.App + "." + id.Registry
}

func parseAppIdentifier(s string) (appIdentifier, error) {
	match := appIdentifierPattern.FindStringSubmatch(s)
	if match == nil {
		return appIdentifier{}, fmt.Errorf("invalid app identifier %s. Expected <app>[.<registry>][:<label>]", s)
	}
	id := appIdentifier{Raw: s, App: match[1], Registry: DefaultRegistry, Label: match[3]}
	if match[2] != "" {
		id.Registry = match[2][1:]
	}
	return id, nil
}

// repoVersion is one published version of an APM repo.
type repoVersion struct {
	CodeAddress common.Address
	ContentURI  string
}

func install(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	dc, err := currentDAO(m, c, env)
	if err != nil {
		return nil, err
	}

	raw, err := identifierText(ctx, env, c.Args[0])
	if err != nil {
		return nil, err
	}
	id, err := parseAppIdentifier(raw)
	if err != nil {
		return nil, module.NewCommandError(m, c, "%s", err.Error())
	}

	version, err := versionOption(ctx, m, c, env)
	if err != nil {
		return nil, err
	}

	repo, err := resolveENS(ctx, m, env, id.RepoName())
	if errors.Is(err, chain.ErrNameNotFound) || (err == nil && repo == (common.Address{})) {
		return nil, module.NewCommandError(m, c, "ENS repo name %s couldn't be resolved", id.RepoName())
	}
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}

	rv, err := readRepoVersion(ctx, env.Client(), repo, version)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}

	art, err := appArtifact(ctx, env, dc, rv)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}

	params, err := env.InterpretNodes(ctx, c.Args[1:], module.Strict)
	if err != nil {
		return nil, err
	}
	initData, err := encodeInitialize(art, params)
	if err != nil {
		return nil, module.NewCommandError(m, c, "error when encoding initialize call: %s", err.Error())
	}

	appID := abiutil.Namehash(id.RepoName())

	if _, taken := dc.App(id.Raw); taken {
		return nil, module.NewCommandError(m, c, "identifier %s is already in use", id.Raw)
	}

	proxy, err := proxyAddress(ctx, env, dc, id.Raw)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}

	rec := &dao.AppRecord{
		Identifier:  id.Raw,
		Address:     proxy,
		CodeAddress: rv.CodeAddress,
		ContentURI:  rv.ContentURI,
		ABI:         &art.ABI,
		Local:       true,
		Permissions: make(map[common.Hash]*dao.Permission, len(art.Roles)),
	}
	for _, role := range art.Roles {
		rec.Permission(role.Hash, true)
	}
	if err := dc.AddApp(rec); err != nil {
		return nil, module.NewCommandError(m, c, "%s", err.Error())
	}

	env.Logger().Debug("app installed",
		"identifier", id.Raw,
		"proxy", proxy.Hex(),
		"code", rv.CodeAddress.Hex())

	data, err := newAppInstanceFn.Encode(appID, rv.CodeAddress, initData, false)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}
	return []module.Action{{To: dc.Kernel, Data: data}}, nil
}

// identifierText returns the identifier as written. Bare words are taken
// verbatim so an identifier bound by an earlier install still reads as its
// name; $variables are resolved.
func identifierText(ctx context.Context, env module.Env, n parser.Node) (string, error) {
	switch lit := n.(type) {
	case *parser.ProbableIdentifier:
		if !strings.HasPrefix(lit.Value, "$") {
			return lit.Value, nil
		}
	case *parser.StringLiteral:
		return lit.Value, nil
	}
	v, err := env.InterpretNode(ctx, n, module.Literal)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("invalid app identifier %s", abiutil.Describe(v))
	}
	return s, nil
}

// versionOption reads and validates --version. It returns nil when the
// option is absent.
func versionOption(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]any, error) {
	v, ok, err := module.Option(ctx, env, c, "version", module.Literal)
	if err != nil || !ok {
		return nil, err
	}

	text := abiutil.Describe(v)
	if s, isString := v.(string); isString {
		text = s
	}
	if !semanticVersionPattern.MatchString(text) {
		return nil, module.NewCommandError(m, c, "invalid --version option. Expected a semantic version, but got %s", text)
	}

	parts := strings.Split(text, ".")
	version := make([]any, len(parts))
	for i, p := range parts {
		n, ok := new(big.Int).SetString(p, 10)
		if !ok {
			return nil, module.NewCommandError(m, c, "invalid --version option. Expected a semantic version, but got %s", text)
		}
		version[i] = n
	}
	return version, nil
}

// readRepoVersion reads the given version of an APM repo, or its latest
// version when version is nil.
func readRepoVersion(ctx context.Context, client chain.Client, repo common.Address, version []any) (repoVersion, error) {
	var (
		out any
		err error
	)
	if version != nil {
		out, err = chain.Call(ctx, client, repo, repoByVersionFn, version)
	} else {
		out, err = chain.Call(ctx, client, repo, repoLatestFn)
	}
	if err != nil {
		return repoVersion{}, err
	}

	fields, ok := out.([]any)
	if !ok || len(fields) != 3 {
		return repoVersion{}, fmt.Errorf("unexpected repo version %s", abiutil.Describe(out))
	}
	code, _ := fields[1].(common.Address)
	content, _ := fields[2].(string)

	uri, err := decodeContentURI(content)
	if err != nil {
		return repoVersion{}, err
	}
	return repoVersion{CodeAddress: code, ContentURI: uri}, nil
}

// decodeContentURI turns the hex encoded bytes of a repo version into the
// URI text.
func decodeContentURI(hexBytes string) (string, error) {
	b, ok := abiutil.Bytes(hexBytes)
	if !ok {
		return "", fmt.Errorf("invalid content URI %s", hexBytes)
	}
	return string(b), nil
}

// appArtifact returns the artifact for rv's code address, fetching it only
// when the DAO context has not seen that code before.
func appArtifact(ctx context.Context, env module.Env, dc *dao.Context, rv repoVersion) (*dao.Artifact, error) {
	if art, ok := dc.Artifact(rv.CodeAddress); ok {
		return art, nil
	}
	if env.Artifacts() == nil {
		return nil, errors.New("no artifact fetcher configured")
	}

	env.Logger().Debug("fetching app artifact", "code", rv.CodeAddress.Hex(), "uri", rv.ContentURI)
	art, err := env.Artifacts().Fetch(ctx, rv.ContentURI)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact %s: %w", rv.ContentURI, err)
	}
	dc.SetArtifact(rv.CodeAddress, art)
	return art, nil
}

// encodeInitialize encodes the app's initialize call. Apps without an
// initialize function are installed with empty calldata when no params are
// given.
func encodeInitialize(art *dao.Artifact, params []any) ([]byte, error) {
	method, ok := art.ABI.Methods["initialize"]
	if !ok {
		if len(params) == 0 {
			return []byte{}, nil
		}
		return nil, errors.New("the app has no initialize function")
	}
	return abiutil.EncodeMethod(method, params)
}

// proxyAddress returns the address the kernel will deploy the next app
// proxy at, binding identifier to it unless it is already bound.
func proxyAddress(ctx context.Context, env module.Env, dc *dao.Context, identifier string) (common.Address, error) {
	if v, ok := env.Bindings().Lookup(identifier, bindings.Addr); ok {
		if addr, ok := abiutil.ToAddress(v); ok {
			return addr, nil
		}
	}

	nonce, err := env.NextNonce(ctx, dc.Kernel)
	if err != nil {
		return common.Address{}, err
	}
	addr := crypto.CreateAddress(dc.Kernel, nonce)
	env.Bindings().Set(bindings.Key{Namespace: bindings.Addr, Name: identifier}, addr, false)
	return addr, nil
}
