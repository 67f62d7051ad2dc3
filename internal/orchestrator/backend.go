package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"brewery/internal/status"
	"brewery/pkg/brew"
)

// ErrUnknownKind is returned for an operation kind the backend cannot perform.
var ErrUnknownKind = errors.New("unknown operation kind")

// BrewBackend performs operations with the Homebrew client, the Go toolchain
// and the status aggregator.
type BrewBackend struct {
	Client *brew.Client
	GoTool *brew.GoTool
	Status *status.Aggregator

	// BundleFile is passed to `brew bundle dump`; empty means ./Brewfile.
	BundleFile string
}

// Perform implements Backend. Value holds the typed payload:
//
//	FetchLeaves, FetchCasks     []string
//	FetchDetails, FetchDeps     brew.PackageDetail
//	FetchSizes                  []brew.SizeEntry
//	Search                      []brew.SearchResult
//	RefreshStatus               *status.Snapshot
//	CheckRemote                 string
//
// Commands that change the system carry their output in Output instead.
func (b *BrewBackend) Perform(ctx context.Context, op Operation) Result {
	var (
		res Result
		err error
	)

	switch op.Kind {
	case FetchLeaves:
		res.Value, err = b.Client.Leaves(ctx)
	case FetchCasks:
		res.Value, err = b.Client.Casks(ctx)
	case FetchDetails:
		res.Value, err = b.Client.Details(ctx, op.Target, false)
	case FetchDeps:
		res.Value, err = b.Client.Details(ctx, op.Target, true)
	case FetchSizes:
		res.Value, err = b.Client.Sizes(ctx)
	case Search:
		res.Value, err = b.Client.Search(ctx, op.Query)
	case RefreshStatus:
		if b.Status == nil {
			err = fmt.Errorf("%w: %s", ErrUnknownKind, op.Kind)
			break
		}
		res.Value, err = b.Status.Refresh(ctx)
	case CheckRemote:
		if b.Status == nil {
			err = fmt.Errorf("%w: %s", ErrUnknownKind, op.Kind)
			break
		}
		res.Value, err = b.Status.RemoteLatest(ctx)
	case Install:
		res.Output, err = b.Client.Install(ctx, op.Target)
	case Uninstall:
		res.Output, err = b.Client.Uninstall(ctx, op.Target)
	case Upgrade:
		res.Output, err = b.Client.Upgrade(ctx, op.Target)
	case UpgradeAll:
		res.Output, err = b.Client.UpgradeAll(ctx, op.Names)
	case SelfUpdate:
		if b.GoTool == nil {
			err = fmt.Errorf("%w: %s", ErrUnknownKind, op.Kind)
			break
		}
		res.Output, err = b.GoTool.SelfUpdate(ctx)
		if err == nil && b.Status != nil {
			b.Status.ForgetRemote()
		}
	case Cleanup:
		res.Output, err = b.Client.Cleanup(ctx)
	case Autoremove:
		res.Output, err = b.Client.Autoremove(ctx)
	case BundleDump:
		res.Output, err = b.Client.BundleDump(ctx, b.BundleFile)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownKind, op.Kind)
	}

	res.Err = err
	return res
}
