package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/audio"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/pinyin"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/config"
)

const maskedChar = "＊"

func newCipherCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newEncodeCommand(ctx),
		newDecodeCommand(),
		newRenderCommand(ctx),
		newPlayCommand(ctx),
	}
}

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var unlock string

	cmd := &cobra.Command{
		Use:   "encode <text>",
		Short: "Show the pinyin and Morse code of each character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reveal := cfg.Audio.UnlockPhrase == "" || unlock == cfg.Audio.UnlockPhrase

			translit := pinyin.NewTransliterator()
			encoding := cipher.NewCodec(translit).Encode(args[0])
			if len(encoding.Phonetic) == 0 {
				return errors.New("no readable Han characters in input")
			}

			var rows [][]string
			for _, r := range args[0] {
				if !unicode.Is(unicode.Han, r) {
					continue
				}
				token, ok := translit.Phonetic(r)
				if !ok {
					continue
				}
				char := string(r)
				if !reveal {
					char = maskedChar
				}
				rows = append(rows, []string{char, token, cipher.PhoneticToCipher([]string{token})})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"CHAR", "PINYIN", "MORSE"}, rows, nil))
			fmt.Fprintf(out, "cipher:   %s\n", encoding.Cipher)
			fmt.Fprintf(out, "tones:    %d\n", len(encoding.Timeline.Events))
			fmt.Fprintf(out, "duration: %s\n", encoding.Timeline.Total())
			if !reveal {
				fmt.Fprintln(out, color.YellowString("characters hidden; pass --unlock to reveal"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&unlock, "unlock", "", "Unlock phrase that reveals the characters")
	return cmd
}

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <morse>",
		Short: "Decode a Morse cipher into pinyin tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cipher.ValidateCipher(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(cipher.CipherToPhonetic(args[0]), " "))
			return nil
		},
	}
}

// timelineFrom encodes text, or validates and lays out a raw cipher
func timelineFrom(args []string, raw string) (cipher.Timeline, error) {
	if raw != "" {
		if err := cipher.ValidateCipher(raw); err != nil {
			return cipher.Timeline{}, err
		}
		return cipher.CipherToTimeline(raw), nil
	}
	if len(args) == 0 {
		return cipher.Timeline{}, errors.New("pass text or --cipher")
	}
	encoding := cipher.NewCodec(pinyin.NewTransliterator()).Encode(args[0])
	if encoding.Cipher == "" {
		return cipher.Timeline{}, errors.New("no readable Han characters in input")
	}
	return encoding.Timeline, nil
}

func toneFrom(cfg *config.Config) audio.Tone {
	return audio.Tone{
		Frequency: cfg.Audio.Frequency,
		Gain:      cfg.Audio.Gain,
		Ramp:      time.Duration(cfg.Audio.RampMs) * time.Millisecond,
	}
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var raw string
	var output string

	cmd := &cobra.Command{
		Use:   "render [text]",
		Short: "Write the cipher tones to a WAV file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			timeline, err := timelineFrom(args, raw)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := audio.RenderWAV(f, timeline, toneFrom(cfg), cfg.Audio.SampleRate); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d tones)\n", output, timeline.Total(), len(timeline.Events))
			return nil
		},
	}

	cmd.Flags().StringVar(&raw, "cipher", "", "Morse cipher to render instead of text")
	cmd.Flags().StringVarP(&output, "output", "o", "cipher.wav", "WAV file to write")
	return cmd
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var raw, output string
	var progress bool

	cmd := &cobra.Command{
		Use:   "play [text]",
		Short: "Play the cipher as tones in real time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			timeline, err := timelineFrom(args, raw)
			if err != nil {
				return err
			}

			sink, err := playbackSink(cmd, output, cfg.Audio.SampleRate)
			if err != nil {
				return err
			}
			player := audio.NewPlayer(sink, toneFrom(cfg), logger.NewNoopLogger())
			defer player.Dispose()

			var onProgress audio.ProgressFunc
			if progress {
				onProgress = progressPrinter(cmd.ErrOrStderr())
			}
			err = player.Play(cmd.Context(), timeline, onProgress)
			if progress {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			return err
		},
	}

	cmd.Flags().StringVar(&raw, "cipher", "", "Morse cipher to play instead of text")
	cmd.Flags().StringVar(&output, "sink", "auto", "Where tones go: auto, device or terminal")
	cmd.Flags().BoolVar(&progress, "progress", false, "Print playback progress to stderr")
	return cmd
}

// playbackSink picks the tone output. auto sounds the device and echoes symbols,
// falling back to symbols alone when there is no sound card.
func playbackSink(cmd *cobra.Command, mode string, sampleRate int) (audio.Sink, error) {
	terminal := audio.NewTerminalSink(cmd.OutOrStdout())
	switch mode {
	case "terminal":
		return terminal, nil
	case "device", "auto":
		device, err := audio.NewDeviceSink(sampleRate)
		if err == nil {
			return audio.MultiSink{device, terminal}, nil
		}
		if mode == "device" {
			return nil, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s, showing symbols only\n", err)
		return terminal, nil
	}
	return nil, fmt.Errorf("unknown sink %q, want auto, device or terminal", mode)
}

func progressPrinter(w io.Writer) audio.ProgressFunc {
	const width = 30
	return func(fraction float64) {
		filled := int(fraction * width)
		fmt.Fprintf(w, "\r[%s%s] %3.0f%%", strings.Repeat("#", filled), strings.Repeat(" ", width-filled), fraction*100)
	}
}
