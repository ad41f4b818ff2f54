package aragonos_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/dao"
	"github.com/CommonsSwarm/evmscripter/internal/interpreter"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/internal/modules/aragonos"
	"github.com/CommonsSwarm/evmscripter/internal/modules/std"
	"github.com/CommonsSwarm/evmscripter/internal/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	getLatestSig     = "getLatest():(uint16[3],address,bytes)"
	getByVersionSig  = "getBySemanticVersion(uint16[3]):(uint16[3],address,bytes)"
	permManagerSig   = "getPermissionManager(address,bytes32):(address)"
	hasPermissionSig = "hasPermission(address,address,bytes32):(bool)"

	vaultURI   = "ipfs:QmVault"
	financeURI = "ipfs:QmFinance"
)

var (
	daoKernel   = common.HexToAddress("0xa000000000000000000000000000000000000001")
	daoACL      = common.HexToAddress("0xa000000000000000000000000000000000000002")
	vaultRepo   = common.HexToAddress("0xb000000000000000000000000000000000000001")
	financeRepo = common.HexToAddress("0xb000000000000000000000000000000000000002")
	vaultCode   = common.HexToAddress("0xc000000000000000000000000000000000000001")
	financeCode = common.HexToAddress("0xc000000000000000000000000000000000000002")
	remoteApp   = common.HexToAddress("0xd000000000000000000000000000000000000001")
	grantee     = common.HexToAddress("0xe000000000000000000000000000000000000001")
	otherEntity = common.HexToAddress("0xe000000000000000000000000000000000000002")
	manager     = common.HexToAddress("0xe000000000000000000000000000000000000003")

	newAppInstance = abiutil.MustParseFunction("newAppInstance(bytes32,address,bytes,bool)")
	createPerm     = abiutil.MustParseFunction("createPermission(address,address,bytes32,address)")
	grantPerm      = abiutil.MustParseFunction("grantPermission(address,address,bytes32)")
	revokePerm     = abiutil.MustParseFunction("revokePermission(address,address,bytes32)")
	removePermMgr  = abiutil.MustParseFunction("removePermissionManager(address,bytes32)")
	transferRole   = crypto.Keccak256Hash([]byte("TRANSFER_ROLE"))
	createPayments = crypto.Keccak256Hash([]byte("CREATE_PAYMENTS_ROLE"))
	kernelNonce    = uint64(5)
	firstProxy     = crypto.CreateAddress(daoKernel, kernelNonce)
	secondProxy    = crypto.CreateAddress(daoKernel, kernelNonce+1)
)

const vaultArtifact = `{
  "abi": [{"type":"function","name":"initialize","inputs":[],"outputs":[],"stateMutability":"nonpayable"}],
  "roles": [{"id":"TRANSFER_ROLE","name":"Transfer assets","params":[]}]
}`

const financeArtifact = `{
  "abi": [{"type":"function","name":"initialize","inputs":[
    {"name":"_vault","type":"address"},
    {"name":"_periodDuration","type":"uint64"}
  ],"outputs":[],"stateMutability":"nonpayable"}],
  "roles": [{"id":"CREATE_PAYMENTS_ROLE","name":"Create payments","params":[]}]
}`

type fixture struct {
	chain     *testutil.FakeChain
	names     *testutil.FakeResolver
	artifacts *testutil.FakeFetcher
	versions  [][3]uint16
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		chain:     testutil.NewFakeChain(),
		artifacts: testutil.NewFakeFetcher(),
		names: testutil.NewFakeResolver(map[string]common.Address{
			"vault.aragonpm.eth":   vaultRepo,
			"finance.aragonpm.eth": financeRepo,
			"mydao.aragonid.eth":   daoKernel,
		}),
	}

	f.chain.Return(daoKernel, "acl():(address)", daoACL)
	f.chain.SetNonce(daoKernel, kernelNonce)

	f.chain.Return(vaultRepo, getLatestSig, [3]uint16{2, 0, 0}, vaultCode, []byte(vaultURI))
	f.chain.Handle(vaultRepo, getByVersionSig, func(args []any) ([]any, error) {
		v := args[0].([3]uint16)
		f.versions = append(f.versions, v)
		return []any{v, vaultCode, []byte(vaultURI)}, nil
	})
	f.chain.Return(financeRepo, getLatestSig, [3]uint16{1, 0, 0}, financeCode, []byte(financeURI))

	f.artifacts.Set(vaultURI, mustArtifact(t, vaultArtifact))
	f.artifacts.Set(financeURI, mustArtifact(t, financeArtifact))
	return f
}

func mustArtifact(t *testing.T, src string) *dao.Artifact {
	t.Helper()
	art, err := dao.ParseArtifact([]byte(src))
	require.NoError(t, err)
	return art
}

func (f *fixture) interpret(t *testing.T, src string) ([]module.Action, error) {
	t.Helper()
	registry := module.NewRegistry().MustRegister(std.Definition(), aragonos.Definition())
	return interpreter.Interpret(context.Background(), src, interpreter.Config{
		Client:    f.chain,
		Names:     f.names,
		Artifacts: f.artifacts,
		Registry:  registry,
		Logger:    testutil.NewTestLogger(t),
	})
}

// inDAO wraps body lines in a connect block. Body lines start at line 3.
func inDAO(body ...string) string {
	return fmt.Sprintf("load aragonos as ar\nar:connect %s (\n%s\n)\n", daoKernel.Hex(), strings.Join(body, "\n"))
}

func unpack(t *testing.T, fn *abiutil.Function, data []byte) []any {
	t.Helper()
	require.GreaterOrEqual(t, len(data), 4)
	require.Equal(t, fn.ID, data[:4], "selector of %s", fn.Sig)
	args, err := fn.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	return args
}

func requireCommandError(t *testing.T, err error, contains string) {
	t.Helper()
	require.Error(t, err)
	var cmdErr *module.CommandError
	require.True(t, errors.As(err, &cmdErr), "expected CommandError, got %T: %v", err, err)
	assert.Contains(t, err.Error(), contains)
}

func TestInstall_EmitsNewAppInstance(t *testing.T) {
	f := newFixture(t)

	actions, err := f.interpret(t, inDAO(
		"ar:install vault.aragonpm.eth:main",
		`exec vault.aragonpm.eth:main "deposit()"`,
	))
	require.NoError(t, err)
	require.Len(t, actions, 2)

	assert.Equal(t, daoKernel, actions[0].To)
	args := unpack(t, newAppInstance, actions[0].Data)
	assert.Equal(t, [32]byte(abiutil.Namehash("vault.aragonpm.eth")), args[0])
	assert.Equal(t, vaultCode, args[1])
	assert.Equal(t, crypto.Keccak256([]byte("initialize()"))[:4], args[2])
	assert.Equal(t, false, args[3])

	assert.Equal(t, firstProxy, actions[1].To, "identifier is bound to the next proxy address")
}

func TestInstall_IdentifierFromVariable(t *testing.T) {
	f := newFixture(t)

	actions, err := f.interpret(t, inDAO(
		`set $app "vault.aragonpm.eth:main"`,
		"ar:install $app",
		`exec vault.aragonpm.eth:main "deposit()"`,
	))
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, [32]byte(abiutil.Namehash("vault.aragonpm.eth")), unpack(t, newAppInstance, actions[0].Data)[0])
	assert.Equal(t, firstProxy, actions[1].To)

	_, err = f.interpret(t, inDAO("ar:install $missing"))
	require.Error(t, err)
	assert.Equal(t, "BindingNotFoundError", module.Kind(err))
}

func TestInstall_DefaultRegistryAndInitParams(t *testing.T) {
	f := newFixture(t)

	actions, err := f.interpret(t, inDAO(
		"ar:install vault:treasury",
		"ar:install finance:main vault:treasury 2592000",
	))
	require.NoError(t, err)
	require.Len(t, actions, 2)

	args := unpack(t, newAppInstance, actions[1].Data)
	assert.Equal(t, [32]byte(abiutil.Namehash("finance.aragonpm.eth")), args[0])
	assert.Equal(t, financeCode, args[1])

	initialize := abiutil.MustParseFunction("initialize(address,uint64)")
	initArgs := unpack(t, initialize, args[2].([]byte))
	assert.Equal(t, firstProxy, initArgs[0])
	assert.Equal(t, uint64(2592000), initArgs[1])
}

func TestInstall_VersionSelection(t *testing.T) {
	t.Run("specific version", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.interpret(t, inDAO("ar:install vault.aragonpm.eth:main --version 1.2.3"))
		require.NoError(t, err)

		assert.Equal(t, 1, f.chain.CallCount(getByVersionSig))
		assert.Equal(t, 0, f.chain.CallCount(getLatestSig))
		assert.Equal(t, [][3]uint16{{1, 2, 3}}, f.versions)
	})

	t.Run("latest version", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.interpret(t, inDAO("ar:install vault.aragonpm.eth:main"))
		require.NoError(t, err)

		assert.Equal(t, 0, f.chain.CallCount(getByVersionSig))
		assert.Equal(t, 1, f.chain.CallCount(getLatestSig))
	})

	for _, version := range []string{"1.2", "1", "1.2.3.4", "v1.2.3"} {
		t.Run("malformed "+version, func(t *testing.T) {
			f := newFixture(t)
			actions, err := f.interpret(t, inDAO("ar:install vault.aragonpm.eth:main --version "+version))

			assert.Nil(t, actions)
			requireCommandError(t, err, "invalid --version option. Expected a semantic version, but got "+version)
			assert.Equal(t, 0, f.chain.CallCount(getByVersionSig))
			assert.Equal(t, 0, f.chain.CallCount(getLatestSig))
			assert.Empty(t, f.names.Lookups(), "the repo name must not be resolved")
		})
	}
}

func TestInstall_DuplicateIdentifier(t *testing.T) {
	f := newFixture(t)

	actions, err := f.interpret(t, inDAO(
		"ar:install vault.aragonpm.eth:main",
		"ar:install vault.aragonpm.eth:main",
	))
	assert.Nil(t, actions)
	requireCommandError(t, err, "identifier vault.aragonpm.eth:main is already in use")

	var modErr module.Error
	require.True(t, errors.As(err, &modErr))
	assert.Equal(t, 4, modErr.Position().Line)
	assert.Equal(t, 1, modErr.Position().Column)
	assert.Equal(t, "aragonos:install", modErr.Owner())
}

func TestInstall_ArtifactFetchedOncePerCodeAddress(t *testing.T) {
	f := newFixture(t)

	actions, err := f.interpret(t, inDAO(
		"ar:install vault.aragonpm.eth:a",
		"ar:install vault.aragonpm.eth:b",
		`exec vault.aragonpm.eth:b "deposit()"`,
	))
	require.NoError(t, err)
	require.Len(t, actions, 3)

	assert.Equal(t, 1, f.artifacts.Fetches(vaultURI))
	assert.Equal(t, 1, f.chain.CallCount("nonce"), "the kernel nonce is read once")
	assert.Equal(t, secondProxy, actions[2].To)
}

func TestInstall_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		kind    string
		message string
	}{
		{
			name:    "outside connect",
			src:     "load aragonos as ar\nar:install vault.aragonpm.eth:main",
			kind:    "CommandError",
			message: `must be used within a "connect" command`,
		},
		{
			name:    "malformed identifier",
			src:     inDAO("ar:install Vault!"),
			kind:    "CommandError",
			message: "invalid app identifier Vault!",
		},
		{
			name:    "unresolved repo",
			src:     inDAO("ar:install unknown:main"),
			kind:    "CommandError",
			message: "ENS repo name unknown.aragonpm.eth couldn't be resolved",
		},
		{
			name:    "encoding failure",
			src:     inDAO("ar:install finance:main 0xe000000000000000000000000000000000000001"),
			kind:    "CommandError",
			message: "error when encoding initialize call: initialize(address,uint64) expects 2 parameters, got 1",
		},
		{
			name:    "no arguments",
			src:     inDAO("ar:install"),
			kind:    "ArgsLengthError",
			message: "3:1: aragonos:install: invalid number of arguments. Expected at least 1 argument, but got 0",
		},
		{
			name:    "unknown option",
			src:     inDAO("ar:install vault:main --label x"),
			kind:    "UnknownOptionError",
			message: "invalid option --label. Expected one of: version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			actions, err := f.interpret(t, tt.src)

			require.Error(t, err)
			assert.Nil(t, actions)
			assert.Equal(t, tt.kind, module.Kind(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestInstall_ValidationPrecedesNetwork(t *testing.T) {
	f := newFixture(t)

	_, err := f.interpret(t, inDAO("ar:install"))
	require.Error(t, err)

	assert.Empty(t, f.names.Lookups())
	assert.Zero(t, f.artifacts.TotalFetches())
	assert.Equal(t, 0, f.chain.CallCount(getLatestSig))
}

func TestInstall_FetchFailureIsWrapped(t *testing.T) {
	f := newFixture(t)
	f.chain.Return(vaultRepo, getLatestSig, [3]uint16{3, 0, 0}, vaultCode, []byte("ipfs:QmMissing"))

	_, err := f.interpret(t, inDAO("ar:install vault:main"))
	requireCommandError(t, err, "artifact ipfs:QmMissing not found")
}

func TestConnect(t *testing.T) {
	t.Run("binds kernel and acl inside the block only", func(t *testing.T) {
		f := newFixture(t)
		actions, err := f.interpret(t, inDAO(`exec kernel "foo()"`, `exec acl "bar()"`))
		require.NoError(t, err)
		require.Len(t, actions, 2)
		assert.Equal(t, daoKernel, actions[0].To)
		assert.Equal(t, daoACL, actions[1].To)

		_, err = f.interpret(t, inDAO()+`exec kernel "foo()"`)
		require.Error(t, err)
		assert.Equal(t, "BindingNotFoundError", module.Kind(err))
	})

	t.Run("resolves aragonid names", func(t *testing.T) {
		f := newFixture(t)
		actions, err := f.interpret(t, "load aragonos as ar\nar:connect mydao (\nexec kernel \"foo()\"\n)")
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, daoKernel, actions[0].To)
		assert.Equal(t, []string{"mydao.aragonid.eth"}, f.names.Lookups())
	})

	t.Run("unresolved name", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.interpret(t, "load aragonos as ar\nar:connect nodao (\n)")
		requireCommandError(t, err, "ENS DAO name nodao.aragonid.eth couldn't be resolved")
	})

	t.Run("requires a block", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.interpret(t, "load aragonos as ar\nar:connect mydao mydao")
		requireCommandError(t, err, "invalid block")
	})

	t.Run("unknown chain without resolver", func(t *testing.T) {
		f := newFixture(t)
		f.chain.ID = big.NewInt(1337)
		_, err := f.interpret(t, "load aragonos as ar\nar:connect mydao (\n)")
		requireCommandError(t, err, "no ENS registry known for chain 1337")

		_, err = f.interpret(t, "load aragonos as ar\nset $ar:ensResolver 0x00000000000c2e074ec69a0dfb2997ba6c7d2e1e\nar:connect mydao (\n)")
		require.NoError(t, err)
	})

	t.Run("nested connects restore the outer dao", func(t *testing.T) {
		f := newFixture(t)
		other := common.HexToAddress("0xa000000000000000000000000000000000000011")
		f.chain.Return(other, "acl():(address)", daoACL)

		actions, err := f.interpret(t, inDAO(
			fmt.Sprintf("ar:connect %s (\nexec kernel \"a()\"\n)", other.Hex()),
			`exec kernel "b()"`,
		))
		require.NoError(t, err)
		require.Len(t, actions, 2)
		assert.Equal(t, other, actions[0].To)
		assert.Equal(t, daoKernel, actions[1].To)
	})
}

func TestDefaultAliasPrefix(t *testing.T) {
	for _, load := range []string{"load aragonos", "load ar"} {
		t.Run(load, func(t *testing.T) {
			f := newFixture(t)
			src := fmt.Sprintf("%s\nar:connect %s (\n  ar:install vault:main\n)\n", load, daoKernel.Hex())

			actions, err := f.interpret(t, src)
			require.NoError(t, err)
			require.Len(t, actions, 1)
			assert.Equal(t, daoKernel, actions[0].To)
		})
	}
}

func TestGrant_LocalApp(t *testing.T) {
	f := newFixture(t)

	actions, err := f.interpret(t, inDAO(
		"ar:install vault:main",
		fmt.Sprintf("ar:grant %s vault:main TRANSFER_ROLE %s", grantee.Hex(), manager.Hex()),
		fmt.Sprintf("ar:grant %s vault:main TRANSFER_ROLE", otherEntity.Hex()),
	))
	require.NoError(t, err)
	require.Len(t, actions, 3)

	assert.Equal(t, daoACL, actions[1].To)
	args := unpack(t, createPerm, actions[1].Data)
	assert.Equal(t, []any{grantee, firstProxy, [32]byte(transferRole), manager}, args)

	args = unpack(t, grantPerm, actions[2].Data)
	assert.Equal(t, []any{otherEntity, firstProxy, [32]byte(transferRole)}, args)

	assert.Equal(t, 0, f.chain.CallCount(permManagerSig), "local apps never read the ACL")
}

func TestGrant_RemoteApp(t *testing.T) {
	f := newFixture(t)
	f.chain.Return(daoACL, permManagerSig, manager)
	f.chain.Return(daoACL, hasPermissionSig, false)

	actions, err := f.interpret(t, inDAO(
		fmt.Sprintf("ar:grant %s %s CREATE_PAYMENTS_ROLE", grantee.Hex(), remoteApp.Hex()),
		fmt.Sprintf("ar:grant %s %s CREATE_PAYMENTS_ROLE", otherEntity.Hex(), remoteApp.Hex()),
	))
	require.NoError(t, err)
	require.Len(t, actions, 2)

	args := unpack(t, grantPerm, actions[0].Data)
	assert.Equal(t, []any{grantee, remoteApp, [32]byte(createPayments)}, args)
	assert.Equal(t, 1, f.chain.CallCount(permManagerSig), "permission state is cached")
	assert.Equal(t, 2, f.chain.CallCount(hasPermissionSig))
}

func TestGrant_Errors(t *testing.T) {
	invalidHash := "0x154c00819833dac601ee5ddded6fda79d9d8b506b911b3dbd54cdb95fe6c366"

	tests := []struct {
		name    string
		cmd     string
		kind    string
		message string
	}{
		{
			name:    "invalid grantee",
			cmd:     "ar:grant false vault:main TRANSFER_ROLE",
			kind:    "CommandError",
			message: "invalid permission provided: Invalid grantee. Expected an address, but got false",
		},
		{
			name:    "invalid app",
			cmd:     fmt.Sprintf("ar:grant %s false TRANSFER_ROLE", grantee.Hex()),
			kind:    "CommandError",
			message: "invalid permission provided: Invalid app. Expected an address, but got false",
		},
		{
			name:    "invalid hash role",
			cmd:     fmt.Sprintf("ar:grant %s vault:main %s", grantee.Hex(), invalidHash),
			kind:    "CommandError",
			message: "invalid permission provided: Invalid role. Expected a valid hash, but got " + invalidHash,
		},
		{
			name:    "non-existent role",
			cmd:     fmt.Sprintf("ar:grant %s vault:main NON_EXISTENT_ROLE %s", grantee.Hex(), manager.Hex()),
			kind:    "CommandError",
			message: "given permission doesn't exists on app vault:main",
		},
		{
			name:    "missing manager",
			cmd:     fmt.Sprintf("ar:grant %s vault:main TRANSFER_ROLE", grantee.Hex()),
			kind:    "CommandError",
			message: "required permission manager missing",
		},
		{
			name:    "invalid manager",
			cmd:     fmt.Sprintf("ar:grant %s vault:main TRANSFER_ROLE false", grantee.Hex()),
			kind:    "CommandError",
			message: "invalid permission manager. Expected an address, but got false",
		},
		{
			name:    "non-defined grantee",
			cmd:     "ar:grant token-manager vault:main TRANSFER_ROLE",
			kind:    "BindingNotFoundError",
			message: "token-manager not defined",
		},
		{
			name:    "non-defined manager",
			cmd:     fmt.Sprintf("ar:grant %s vault:main TRANSFER_ROLE voting", grantee.Hex()),
			kind:    "BindingNotFoundError",
			message: "voting not defined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.interpret(t, inDAO("ar:install vault:main", tt.cmd))

			require.Error(t, err)
			assert.Equal(t, tt.kind, module.Kind(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestGrant_Duplicate(t *testing.T) {
	f := newFixture(t)

	cmd := fmt.Sprintf("ar:grant %s vault:main TRANSFER_ROLE %s", grantee.Hex(), manager.Hex())
	_, err := f.interpret(t, inDAO("ar:install vault:main", cmd, cmd))
	requireCommandError(t, err, "already has the given permission on app vault:main")
}

func TestRevoke(t *testing.T) {
	t.Run("remote app with manager removal", func(t *testing.T) {
		f := newFixture(t)
		f.chain.Return(daoACL, permManagerSig, manager)
		f.chain.Return(daoACL, hasPermissionSig, true)

		actions, err := f.interpret(t, inDAO(
			fmt.Sprintf("ar:revoke %s %s CREATE_PAYMENTS_ROLE true", grantee.Hex(), remoteApp.Hex()),
		))
		require.NoError(t, err)
		require.Len(t, actions, 2)

		args := unpack(t, revokePerm, actions[0].Data)
		assert.Equal(t, []any{grantee, remoteApp, [32]byte(createPayments)}, args)
		args = unpack(t, removePermMgr, actions[1].Data)
		assert.Equal(t, []any{remoteApp, [32]byte(createPayments)}, args)
	})

	t.Run("granted earlier in the script", func(t *testing.T) {
		f := newFixture(t)
		actions, err := f.interpret(t, inDAO(
			"ar:install vault:main",
			fmt.Sprintf("ar:grant %s vault:main TRANSFER_ROLE %s", grantee.Hex(), manager.Hex()),
			fmt.Sprintf("ar:revoke %s vault:main TRANSFER_ROLE", grantee.Hex()),
		))
		require.NoError(t, err)
		require.Len(t, actions, 3)
		unpack(t, revokePerm, actions[2].Data)
	})

	t.Run("grantee without the permission", func(t *testing.T) {
		f := newFixture(t)
		f.chain.Return(daoACL, permManagerSig, manager)
		f.chain.Return(daoACL, hasPermissionSig, false)

		_, err := f.interpret(t, inDAO(
			fmt.Sprintf("ar:revoke %s %s CREATE_PAYMENTS_ROLE", grantee.Hex(), remoteApp.Hex()),
		))
		requireCommandError(t, err, "doesn't have the given permission")
	})

	t.Run("permission never created", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.interpret(t, inDAO(
			"ar:install vault:main",
			fmt.Sprintf("ar:revoke %s vault:main TRANSFER_ROLE", grantee.Hex()),
		))
		requireCommandError(t, err, "given permission doesn't exists on app vault:main")
	})

	t.Run("remove manager must be a boolean", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.interpret(t, inDAO(
			fmt.Sprintf("ar:revoke %s %s CREATE_PAYMENTS_ROLE 1", grantee.Hex(), remoteApp.Hex()),
		))
		requireCommandError(t, err, "invalid remove manager flag. Expected a boolean, but got 1")
	})
}

func TestAragonEnsHelper(t *testing.T) {
	f := newFixture(t)

	actions, err := f.interpret(t, `load aragonos as ar
set $repo @aragonEns(vault.aragonpm.eth)
set $missing @aragonEns(nothing.aragonpm.eth)
exec $repo "foo()"
exec $missing "foo()"`)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, vaultRepo, actions[0].To)
	assert.Equal(t, common.Address{}, actions[1].To)
}
