package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storyreel/internal/pipeline"
	"storyreel/internal/pkg/subtitle"
	"storyreel/internal/provider"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe a narrated MP3 into SRT and JSON subtitles",
	Long: `Transcribe runs only the speech recognition stage and persists the
timed segments as transcript.srt and transcript.json under the project's
scripts directory.`,
	RunE: runTranscribe,
}

var (
	transcribeAudio   string
	transcribeProject string
)

func init() {
	rootCmd.AddCommand(transcribeCmd)

	flags := transcribeCmd.Flags()
	flags.StringVarP(&transcribeAudio, "audio", "a", "", "narrated MP3 file (required)")
	flags.StringVarP(&transcribeProject, "project", "p", "", "project name (default: audio file name)")
	flags.String("language", "", "language hint for speech recognition (e.g. vi, en)")

	_ = transcribeCmd.MarkFlagRequired("audio")

	_ = viper.BindPFlag("audio.language", flags.Lookup("language"))
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if err := pipeline.ValidateAudio(transcribeAudio); err != nil {
		return err
	}

	projectName := transcribeProject
	if projectName == "" {
		projectName = strings.TrimSuffix(filepath.Base(transcribeAudio), filepath.Ext(transcribeAudio))
	}
	project, err := pipeline.NewProject(cfg.Pipeline.ProjectsDir, projectName)
	if err != nil {
		return err
	}

	transcriber := provider.NewWhisperTranscriber(
		cfg.AudioAPIKey(), cfg.Audio.BaseURL, cfg.Audio.Model, cfg.Audio.Language)

	segments, err := transcriber.Transcribe(cmd.Context(), transcribeAudio)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("transcription produced no segments")
	}

	srtPath := filepath.Join(project.ScriptsDir(), "transcript.srt")
	if err := subtitle.WriteSRT(segments, srtPath); err != nil {
		return err
	}
	jsonPath := filepath.Join(project.ScriptsDir(), "transcript.json")
	if err := subtitle.WriteJSON(segments, jsonPath); err != nil {
		return err
	}

	log.Info().Int("segments", len(segments)).
		Str("srt", srtPath).
		Str("json", jsonPath).
		Msg("转写完成")

	fmt.Println(srtPath)
	return nil
}
