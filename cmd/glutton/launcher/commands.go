package launcher

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-glutton/flags"
	"github.com/rony4d/go-opera-glutton/glutton"
	"github.com/rony4d/go-opera-glutton/integration"
	"github.com/rony4d/go-opera-glutton/inter"
)

var errArgs = errors.New("wrong number of arguments")

var (
	runCommand = cli.Command{
		Name:   "run",
		Usage:  "Run idle slots through the pallet",
		Flags:  flags.AllFlags(),
		Action: runSlots,
		Description: `
Runs --slots idle slots. Every slot hands the pallet the idle share of the
network's slot weight and logs how much of it was wasted.`,
	}
	setComputeCommand = cli.Command{
		Name:      "set-compute",
		Usage:     "Set the fraction of idle ref time to waste",
		ArgsUsage: "<fraction>",
		Flags:     flags.AllFlags(),
		Action:    setCompute,
		Description: `
The fraction is a decimal in [0, 1] or a percentage, e.g. 0.25 or 25%.`,
	}
	setStorageCommand = cli.Command{
		Name:      "set-storage",
		Usage:     "Set the fraction of idle proof size to waste",
		ArgsUsage: "<fraction>",
		Flags:     flags.AllFlags(),
		Action:    setStorage,
		Description: `
The fraction is a decimal in [0, 1] or a percentage, e.g. 0.25 or 25%.`,
	}
	initializeCommand = cli.Command{
		Name:      "initialize",
		Usage:     "Fill the trash table",
		ArgsUsage: "<count>",
		Flags:     flags.AllFlags(),
		Action:    initialize,
	}
	profileCommand = cli.Command{
		Name:      "profile",
		Usage:     "Apply a named load profile",
		ArgsUsage: "<name>",
		Flags:     flags.AllFlags(),
		Action:    applyProfile,
	}
	statusCommand = cli.Command{
		Name:   "status",
		Usage:  "Print the pallet configuration",
		Flags:  flags.AllFlags(),
		Action: status,
	}
	dumpWeightsCommand = cli.Command{
		Name:   "dump-weights",
		Usage:  "Write the effective calibration as YAML",
		Flags:  append(flags.AllFlags(), cli.StringFlag{Name: "out", Usage: "Output file (defaults to stdout)"}),
		Action: dumpWeights,
	}
)

func withNode(ctx *cli.Context, fn func(n *node) error) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	n, err := makeNode(cfg, logOutput(ctx))
	if err != nil {
		return err
	}
	defer n.Close()
	return fn(n)
}

func logOutput(ctx *cli.Context) io.Writer {
	if ctx.App.ErrWriter != nil {
		return ctx.App.ErrWriter
	}
	return os.Stderr
}

func singleArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("%w: want 1, got %d", errArgs, ctx.NArg())
	}
	return ctx.Args().First(), nil
}

func runSlots(ctx *cli.Context) error {
	return withNode(ctx, func(n *node) error {
		weights := n.pallet.Weights()
		if err := glutton.IntegrityTest(weights); err != nil {
			return fmt.Errorf("calibration %s: %w", weights.Version(), err)
		}

		var changes int
		events := make(chan glutton.Event)
		sub := n.pallet.SubscribeEvents(events)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-events:
					changes++
				case <-sub.Err():
					return
				}
			}
		}()

		if name := n.cfg.Glutton.Profile; name != "" {
			profile, err := integration.GetProfileByName(name)
			if err != nil {
				sub.Unsubscribe()
				<-done
				return err
			}
			if err := integration.ApplyProfile(n.pallet, profile); err != nil {
				sub.Unsubscribe()
				<-done
				return err
			}
		}

		budget := n.rules.Blocks.SlotBudget()
		n.log.WithFields(logrus.Fields{
			"network": n.rules.Name,
			"budget":  budget,
			"slots":   n.cfg.Glutton.Slots,
		}).Info("Running idle slots")

		start := time.Now()
		total := inter.Zero()
		for i := uint64(1); i <= n.cfg.Glutton.Slots; i++ {
			slot := idx.Block(i)
			used := n.pallet.OnIdle(slot, budget)
			total = total.SaturatingAdd(used)

			refTime, proofSize := utilisation(budget, used)
			n.log.WithFields(logrus.Fields{
				"slot":      slot,
				"used":      used,
				"refTime":   refTime,
				"proofSize": proofSize,
			}).Info("Idle slot done")

			if n.cfg.Glutton.SlotInterval > 0 && i < n.cfg.Glutton.Slots {
				time.Sleep(n.cfg.Glutton.SlotInterval)
			}
		}

		sub.Unsubscribe()
		<-done

		n.log.WithFields(logrus.Fields{
			"slots":   n.cfg.Glutton.Slots,
			"total":   total,
			"changes": changes,
			"elapsed": time.Since(start),
		}).Info("Run finished")

		if n.registry != nil {
			metrics.WriteOnce(n.registry, ctx.App.Writer)
		}
		return nil
	})
}

// utilisation reports which share of budget used takes in each dimension.
func utilisation(budget, used inter.Weight) (refTime, proofSize inter.Perbill) {
	m := inter.NewWeightMeter(budget)
	_ = m.TryConsume(used.Min(budget))
	return m.ConsumedRatio()
}

func setCompute(ctx *cli.Context) error {
	return setFraction(ctx, "compute", func(n *node, p inter.Perbill) (inter.Weight, error) {
		return n.pallet.Weights().SetCompute(), n.pallet.SetCompute(glutton.RootOrigin, p)
	})
}

func setStorage(ctx *cli.Context) error {
	return setFraction(ctx, "storage", func(n *node, p inter.Perbill) (inter.Weight, error) {
		return n.pallet.Weights().SetStorage(), n.pallet.SetStorage(glutton.RootOrigin, p)
	})
}

func setFraction(ctx *cli.Context, what string, set func(*node, inter.Perbill) (inter.Weight, error)) error {
	arg, err := singleArg(ctx)
	if err != nil {
		return err
	}
	p, err := inter.ParsePerbill(arg)
	if err != nil {
		return err
	}
	return withNode(ctx, func(n *node) error {
		weight, err := set(n, p)
		if err != nil {
			return err
		}
		n.log.WithFields(logrus.Fields{
			what:     p,
			"weight": weight,
		}).Info("Limit updated")
		return nil
	})
}

func initialize(ctx *cli.Context) error {
	arg, err := singleArg(ctx)
	if err != nil {
		return err
	}
	count, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", arg, err)
	}
	return withNode(ctx, func(n *node) error {
		start := time.Now()
		if err := n.pallet.InitializePallet(glutton.RootOrigin, uint32(count)); err != nil {
			return err
		}
		n.log.WithFields(logrus.Fields{
			"count":   count,
			"weight":  n.pallet.Weights().InitializePallet().At(count),
			"elapsed": time.Since(start),
		}).Info("Trash table initialized")
		return nil
	})
}

func applyProfile(ctx *cli.Context) error {
	name, err := singleArg(ctx)
	if err != nil {
		return err
	}
	profile, err := integration.GetProfileByName(name)
	if err != nil {
		return err
	}
	return withNode(ctx, func(n *node) error {
		if err := integration.ApplyProfile(n.pallet, profile); err != nil {
			return err
		}
		n.log.WithFields(logrus.Fields{
			"profile": profile.Name,
			"compute": profile.Compute,
			"storage": profile.Storage,
		}).Info("Profile applied")
		return nil
	})
}

func status(ctx *cli.Context) error {
	return withNode(ctx, func(n *node) error {
		limits, err := n.pallet.Limits()
		if err != nil {
			return err
		}
		count, err := n.pallet.TrashCount()
		if err != nil {
			return err
		}
		weights := n.pallet.Weights()
		integrity := "ok"
		if err := glutton.IntegrityTest(weights); err != nil {
			integrity = err.Error()
		}

		w := ctx.App.Writer
		fmt.Fprintf(w, "network:      %s (slot budget %v)\n", n.rules.Name, n.rules.Blocks.SlotBudget())
		fmt.Fprintf(w, "calibration:  %s (%d hash rounds, %s)\n", weights.Version(), weights.HashRounds(), integrity)
		fmt.Fprintf(w, "compute:      %v\n", limits.Compute)
		fmt.Fprintf(w, "storage:      %v\n", limits.Storage)
		fmt.Fprintf(w, "trash:        %d entries\n", count)
		return nil
	})
}

func dumpWeights(ctx *cli.Context) error {
	return withNode(ctx, func(n *node) error {
		raw, err := glutton.MarshalCalibration(n.pallet.Weights())
		if err != nil {
			return err
		}
		if out := ctx.String("out"); out != "" {
			return ioutil.WriteFile(out, raw, 0o644)
		}
		_, err = ctx.App.Writer.Write(raw)
		return err
	})
}
