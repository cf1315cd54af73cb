// Command nlu-cli loads a trained assistant bundle and parses utterances
// given on the command line (or read one per line from stdin), printing
// the resolved intent and slots.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"k8s.io/klog/v2"

	"github.com/voicebox/nlu-engine/config"
	"github.com/voicebox/nlu-engine/engine"
	"github.com/voicebox/nlu-engine/ontology"
	"github.com/voicebox/nlu-engine/resourcepack"
	"github.com/voicebox/nlu-engine/resources"
)

var (
	intentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	slotStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	entityStyle = lipgloss.NewStyle().Faint(true)
	rejectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	utterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

func main() {
	klog.InitFlags(nil)
	bundlePath := flag.String("bundle", "", "path to a trained_assistant.json directory or zip archive")
	bundleURL := flag.String("bundle-url", "", "base URL to download a trained_assistant.json bundle from, cached under -cache-dir")
	resourcesDir := flag.String("resources", "", "path to the language-resources directory (gazetteers, word clusters, stemmers)")
	cacheDir := flag.String("cache-dir", os.TempDir(), "local cache directory for -bundle-url downloads")
	threshold := flag.Float64("threshold", 0, "minimum probabilistic-intent confidence to accept")
	maxParallel := flag.Int("max-parallel", 0, "bound on concurrent per-intent classification goroutines (0 = unbounded)")
	flag.Parse()

	resolvedBundlePath := *bundlePath
	if *bundleURL != "" {
		repo := resourcepack.NewRemote("trained_assistant", *bundleURL, *cacheDir)
		if err := repo.DownloadAll(); err != nil {
			klog.ErrorS(err, "failed to download assistant bundle")
			os.Exit(1)
		}
		resolvedBundlePath = repo.LocalDir
	}
	if resolvedBundlePath == "" {
		fmt.Fprintln(os.Stderr, "usage: nlu-cli (-bundle <path> | -bundle-url <url>) [-resources <dir>] [utterance ...]")
		os.Exit(2)
	}

	eng, err := buildEngine(resolvedBundlePath, *resourcesDir, float32(*threshold), *maxParallel)
	if err != nil {
		klog.ErrorS(err, "failed to build engine")
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) > 0 {
		for _, utterance := range args {
			parseAndPrint(eng, utterance)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parseAndPrint(eng, line)
	}
}

func buildEngine(bundlePath, resourcesDir string, threshold float32, maxParallel int) (*engine.Engine, error) {
	cfg, bundle, err := config.Load(bundlePath)
	if err != nil {
		return nil, err
	}
	defer bundle.Close()

	registry := resources.NewRegistry()
	if resourcesDir != "" {
		if err := registry.Load(resourcesDir); err != nil {
			return nil, err
		}
	}

	return engine.New(cfg, bundle, registry, ontology.RegexParser{}, cfg.Intents, engine.Options{
		Threshold:   threshold,
		MaxParallel: maxParallel,
	})
}

func parseAndPrint(eng *engine.Engine, utterance string) {
	result, err := eng.Parse(context.Background(), utterance)
	fmt.Println(utterStyle.Render("> " + utterance))
	if err != nil {
		klog.ErrorS(err, "parse failed", "utterance", utterance)
		fmt.Println(rejectStyle.Render("  error: " + err.Error()))
		return
	}
	if !result.Intent.Present() {
		fmt.Println(rejectStyle.Render("  (no intent matched)"))
		return
	}

	fmt.Printf("  %s %s\n",
		intentStyle.Render(result.Intent.Name),
		entityStyle.Render(fmt.Sprintf("(%.2f)", result.Intent.Probability)))
	for _, s := range result.Slots {
		fmt.Printf("    %s = %q %s\n",
			slotStyle.Render(s.SlotName),
			s.Value,
			entityStyle.Render(s.Entity))
	}
}
