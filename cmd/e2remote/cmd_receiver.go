// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/spf13/cobra"
)

// deviceCommand builds a command that runs against the selected receiver.
func deviceCommand(a *app, use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, dev *repository.Device, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, provider, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			return run(cmd, repository.NewDevice(provider), args)
		},
	}
}

func newInfoCmd(a *app) *cobra.Command {
	return deviceCommand(a, "info", "Show receiver model, software and storage", cobra.NoArgs,
		func(cmd *cobra.Command, dev *repository.Device, _ []string) error {
			info, err := dev.Info(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(info, func() string {
				pairs := [][2]string{
					{"Model", strings.TrimSpace(info.Brand + " " + info.Model)},
					{"Image", info.ImageVersion},
					{"Enigma", info.EnigmaVersion},
					{"OpenWebIF", info.WebIFVersion},
					{"Kernel", info.KernelVersion},
					{"Chipset", info.Chipset},
					{"Uptime", info.Uptime},
				}
				for i, t := range info.Tuners {
					pairs = append(pairs, [2]string{fmt.Sprintf("Tuner %d", i+1), t.Name + " (" + t.Type + ")"})
				}
				for _, d := range info.Disks {
					pairs = append(pairs, [2]string{"Disk " + d.Model, d.Free + " free of " + d.Capacity})
				}
				for _, n := range info.Interfaces {
					pairs = append(pairs, [2]string{"Network " + n.Name, n.IP + " " + n.MAC})
				}
				return renderPairs(pairs)
			})
		})
}

func newSignalCmd(a *app) *cobra.Command {
	return deviceCommand(a, "signal", "Show tuner signal quality", cobra.NoArgs,
		func(cmd *cobra.Command, dev *repository.Device, _ []string) error {
			sig, err := dev.Signal(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(sig, func() string {
				return renderPairs([][2]string{
					{"SNR", fmt.Sprintf("%d%% (%s)", sig.SNR, sig.SNRdB)},
					{"AGC", fmt.Sprintf("%d%%", sig.AGC)},
					{"BER", strconv.Itoa(int(sig.BER))},
					{"Lock", strconv.FormatBool(sig.Locked)},
					{"Tuner", fmt.Sprintf("%s #%d", sig.TunerType, sig.TunerNumber)},
				})
			})
		})
}

func newStatusCmd(a *app) *cobra.Command {
	return deviceCommand(a, "status", "Show the current channel, volume and standby state", cobra.NoArgs,
		func(cmd *cobra.Command, dev *repository.Device, _ []string) error {
			st, err := dev.Status(cmd.Context())
			if err != nil {
				return err
			}
			settings := a.settings(cmd.Context())
			return a.emit(st, func() string {
				return renderPairs([][2]string{
					{"Channel", st.ServiceName},
					{"Programme", st.EventTitle},
					{"Time", clockRange(settings, int64(st.EventBeginUnix), int64(st.EventEndUnix))},
					{"Volume", fmt.Sprintf("%d%s", st.Volume, mutedSuffix(bool(st.Muted)))},
					{"Standby", strconv.FormatBool(bool(st.InStandby))},
					{"Recording", strconv.FormatBool(bool(st.IsRecording))},
					{"Reference", st.ServiceRef},
				})
			})
		})
}

func mutedSuffix(muted bool) string {
	if muted {
		return " (muted)"
	}
	return ""
}

func newZapCmd(a *app) *cobra.Command {
	return deviceCommand(a, "zap <service-ref>", "Switch the receiver to a channel", cobra.ExactArgs(1),
		func(cmd *cobra.Command, dev *repository.Device, args []string) error {
			if err := dev.Zap(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("Zapped to %s\n", args[0])
			return nil
		})
}

func newRemoteCmd(a *app) *cobra.Command {
	var long bool
	cmd := deviceCommand(a, "remote <key...>", "Press remote control buttons", cobra.MinimumNArgs(1),
		func(cmd *cobra.Command, dev *repository.Device, args []string) error {
			return dev.Remote(cmd.Context(), long, args...)
		})
	cmd.Long = "Press remote control buttons in order. Keys: " + strings.Join(repository.KeyNames(), ", ") + " or a numeric key code."
	cmd.Flags().BoolVar(&long, "long", false, "long press")
	return cmd
}

func newPowerCmd(a *app) *cobra.Command {
	cmd := deviceCommand(a, "power [state]", "Query or change the power state", cobra.MaximumNArgs(1),
		func(cmd *cobra.Command, dev *repository.Device, args []string) error {
			state := ""
			if len(args) == 1 {
				state = args[0]
			}
			standby, err := dev.Power(cmd.Context(), state)
			if err != nil {
				return err
			}
			if standby {
				a.printf("Receiver is in standby\n")
			} else {
				a.printf("Receiver is on\n")
			}
			return nil
		})
	cmd.Long = "Query or change the power state. States: toggle, standby, wakeup, deepstandby, reboot, restart."
	return cmd
}

func newVolumeCmd(a *app) *cobra.Command {
	return deviceCommand(a, "volume <up|down|mute|state|0-100>", "Change or query the volume", cobra.ExactArgs(1),
		func(cmd *cobra.Command, dev *repository.Device, args []string) error {
			vol, err := dev.Volume(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printf("Volume %d%s\n", vol.Current, mutedSuffix(bool(vol.Muted)))
			return nil
		})
}

func newMessageCmd(a *app) *cobra.Command {
	var (
		kind    string
		timeout int
	)
	cmd := deviceCommand(a, "message <text...>", "Show a message on the TV screen", cobra.MinimumNArgs(1),
		func(cmd *cobra.Command, dev *repository.Device, args []string) error {
			mt, ok := openwebif.ParseMessageType(kind)
			if !ok {
				return fmt.Errorf("%w: unknown message type %q", repository.ErrInvalidArgument, kind)
			}
			return dev.Message(cmd.Context(), strings.Join(args, " "), mt, timeout)
		})
	cmd.Flags().StringVar(&kind, "type", "info", "info, warning, error or yesno")
	cmd.Flags().IntVar(&timeout, "timeout", 10, "seconds until the message closes, 0 keeps it open")
	return cmd
}

func newScreenshotCmd(a *app) *cobra.Command {
	var (
		mode  string
		width int
	)
	cmd := deviceCommand(a, "screenshot <file>", "Save a screenshot of the TV picture", cobra.ExactArgs(1),
		func(cmd *cobra.Command, dev *repository.Device, args []string) error {
			m, ok := openwebif.ParseScreenshotMode(mode)
			if !ok {
				return fmt.Errorf("%w: unknown screenshot mode %q", repository.ErrInvalidArgument, mode)
			}
			n, err := dev.Screenshot(cmd.Context(), m, width, args[0])
			if err != nil {
				return err
			}
			a.printf("Saved %s (%d bytes)\n", args[0], n)
			return nil
		})
	cmd.Flags().StringVar(&mode, "mode", "all", "all, video or osd")
	cmd.Flags().IntVar(&width, "width", 0, "scale to this width, 0 keeps the native size")
	return cmd
}

func newStreamCmd(a *app) *cobra.Command {
	return deviceCommand(a, "stream [service-ref]", "Print the live stream URL of a channel (default: the current one)", cobra.MaximumNArgs(1),
		func(cmd *cobra.Command, dev *repository.Device, args []string) error {
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			} else {
				st, err := dev.Status(cmd.Context())
				if err != nil {
					return err
				}
				ref = st.ServiceRef
			}
			u, err := dev.StreamURL(cmd.Context(), ref)
			if err != nil {
				return err
			}
			a.printf("%s\n", u)
			return nil
		})
}

