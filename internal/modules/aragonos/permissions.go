package aragonos

import (
	"context"
	"fmt"
	"strings"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/dao"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/ethereum/go-ethereum/common"
)

const invalidPermission = "invalid permission provided"

// permission is a validated (grantee, app, role) triple.
type permission struct {
	Grantee common.Address
	App     common.Address
	Role    common.Hash

	appText string
}

// parsePermission interprets the first three arguments of grant and revoke.
// Unbound identifiers fail with BindingNotFoundError; every other problem is
// collected into one CommandError.
func parsePermission(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) (permission, error) {
	values, err := env.InterpretNodes(ctx, c.Args[:2], module.Strict)
	if err != nil {
		return permission{}, err
	}
	roleValue, err := env.InterpretNode(ctx, c.Args[2], module.Literal)
	if err != nil {
		return permission{}, err
	}

	var (
		p        = permission{appText: nodeText(c.Args[1], values[1])}
		problems []string
		ok       bool
	)
	if p.Grantee, ok = abiutil.ToAddress(values[0]); !ok {
		problems = append(problems, fmt.Sprintf("Invalid grantee. Expected an address, but got %s", nodeText(c.Args[0], values[0])))
	}
	if p.App, ok = abiutil.ToAddress(values[1]); !ok {
		problems = append(problems, fmt.Sprintf("Invalid app. Expected an address, but got %s", p.appText))
	}
	if p.Role, ok = roleHash(roleValue); !ok {
		problems = append(problems, fmt.Sprintf("Invalid role. Expected a valid hash, but got %s", nodeText(c.Args[2], roleValue)))
	}

	if len(problems) > 0 {
		return permission{}, module.NewCommandError(m, c, "%s: %s", invalidPermission, strings.Join(problems, "; "))
	}
	return p, nil
}

// roleHash accepts a 32-byte hash or a role name such as TRANSFER_ROLE.
// Hex strings that are not 32 bytes long are rejected.
func roleHash(v any) (common.Hash, bool) {
	switch r := v.(type) {
	case common.Hash:
		return r, true
	case string:
		if strings.HasPrefix(r, "0x") {
			return abiutil.ToHash(r)
		}
		if r == "" {
			return common.Hash{}, false
		}
		return abiutil.ID(r), true
	}
	return common.Hash{}, false
}

// loadPermission returns the tracked state of p. Permissions of apps not
// installed by the script are read from the ACL the first time they are
// used.
func loadPermission(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env, dc *dao.Context, p permission) (*dao.AppRecord, *dao.Permission, error) {
	app := dc.RemoteApp(p.App)
	if app.Local {
		perm, ok := app.Permission(p.Role, false)
		if !ok {
			return nil, nil, module.NewCommandError(m, c, "given permission doesn't exists on app %s", p.appText)
		}
		return app, perm, nil
	}

	perm, cached := app.Permission(p.Role, true)
	if !cached {
		manager, err := chain.CallAddress(ctx, env.Client(), dc.ACL, getPermissionManagerFn, p.App, p.Role)
		if err != nil {
			return nil, nil, module.WrapCommandError(m, c, "", err)
		}
		perm.Manager = manager
	}
	return app, perm, nil
}

// holds reports whether grantee holds perm, asking the ACL when the script
// has not established it.
func holds(ctx context.Context, env module.Env, dc *dao.Context, app *dao.AppRecord, perm *dao.Permission, p permission) (bool, error) {
	if held, known := perm.Holder(p.Grantee); known || app.Local {
		return held, nil
	}
	v, err := chain.Call(ctx, env.Client(), dc.ACL, hasPermissionFn, p.Grantee, p.App, p.Role)
	if err != nil {
		return false, err
	}
	held, _ := v.(bool)
	perm.SetHolder(p.Grantee, held)
	return held, nil
}

func grant(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	dc, err := currentDAO(m, c, env)
	if err != nil {
		return nil, err
	}
	p, err := parsePermission(ctx, m, c, env)
	if err != nil {
		return nil, err
	}

	var manager *common.Address
	if len(c.Args) == 4 {
		v, err := env.InterpretNode(ctx, c.Args[3], module.Strict)
		if err != nil {
			return nil, err
		}
		addr, ok := abiutil.ToAddress(v)
		if !ok {
			return nil, module.NewCommandError(m, c, "invalid permission manager. Expected an address, but got %s", nodeText(c.Args[3], v))
		}
		manager = &addr
	}

	app, perm, err := loadPermission(ctx, m, c, env, dc, p)
	if err != nil {
		return nil, err
	}

	if !perm.Exists() {
		if manager == nil {
			return nil, module.NewCommandError(m, c, "required permission manager missing")
		}
		data, err := createPermissionFn.Encode(p.Grantee, p.App, p.Role, *manager)
		if err != nil {
			return nil, module.WrapCommandError(m, c, "", err)
		}
		perm.Manager = *manager
		perm.SetHolder(p.Grantee, true)
		return []module.Action{{To: dc.ACL, Data: data}}, nil
	}

	if manager != nil && *manager != perm.Manager {
		return nil, module.NewCommandError(m, c, "permission manager already set to %s", perm.Manager.Hex())
	}
	held, err := holds(ctx, env, dc, app, perm, p)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}
	if held {
		return nil, module.NewCommandError(m, c, "grantee %s already has the given permission on app %s", p.Grantee.Hex(), p.appText)
	}

	data, err := grantPermissionFn.Encode(p.Grantee, p.App, p.Role)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}
	perm.SetHolder(p.Grantee, true)
	return []module.Action{{To: dc.ACL, Data: data}}, nil
}

func revoke(ctx context.Context, m *module.Module, c *parser.CommandExpression, env module.Env) ([]module.Action, error) {
	dc, err := currentDAO(m, c, env)
	if err != nil {
		return nil, err
	}
	p, err := parsePermission(ctx, m, c, env)
	if err != nil {
		return nil, err
	}

	removeManager := false
	if len(c.Args) == 4 {
		v, err := env.InterpretNode(ctx, c.Args[3], module.Strict)
		if err != nil {
			return nil, err
		}
		b, ok := v.(bool)
		if !ok {
			return nil, module.NewCommandError(m, c, "invalid remove manager flag. Expected a boolean, but got %s", nodeText(c.Args[3], v))
		}
		removeManager = b
	}

	app, perm, err := loadPermission(ctx, m, c, env, dc, p)
	if err != nil {
		return nil, err
	}
	if !perm.Exists() {
		return nil, module.NewCommandError(m, c, "given permission doesn't exists on app %s", p.appText)
	}

	held, err := holds(ctx, env, dc, app, perm, p)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}
	if !held {
		return nil, module.NewCommandError(m, c, "grantee %s doesn't have the given permission on app %s", p.Grantee.Hex(), p.appText)
	}

	data, err := revokePermissionFn.Encode(p.Grantee, p.App, p.Role)
	if err != nil {
		return nil, module.WrapCommandError(m, c, "", err)
	}
	actions := []module.Action{{To: dc.ACL, Data: data}}
	perm.SetHolder(p.Grantee, false)

	if removeManager {
		data, err := removePermissionManagerFn.Encode(p.App, p.Role)
		if err != nil {
			return nil, module.WrapCommandError(m, c, "", err)
		}
		actions = append(actions, module.Action{To: dc.ACL, Data: data})
		perm.Manager = common.Address{}
	}
	return actions, nil
}
