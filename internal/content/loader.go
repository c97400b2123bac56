package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/emberduel/ember-server-go/internal/game"
	"github.com/emberduel/ember-server-go/internal/game/conditions"
	"github.com/emberduel/ember-server-go/internal/game/targeting"
)

// cardFile is the YAML document shape for authored card content.
type cardFile struct {
	Cards []cardDoc `yaml:"cards"`
}

type cardDoc struct {
	ID            int          `yaml:"id"`
	Name          string       `yaml:"name"`
	Cost          int          `yaml:"cost"`
	Rarity        string       `yaml:"rarity"`
	Type          string       `yaml:"type"`
	ComboBuilding bool         `yaml:"combo_building"`
	Finisher      bool         `yaml:"finisher"`
	Effects       []effectDoc  `yaml:"effects"`
	Upgrade       *upgradeDoc  `yaml:"upgrade"`
	Stance        *stanceDoc   `yaml:"stance"`
}

type effectDoc struct {
	Kind        string        `yaml:"kind"`
	Target      string        `yaml:"target"`
	Amount      int           `yaml:"amount"`
	Duration    int           `yaml:"duration"`
	Stance      string        `yaml:"stance"`
	Scaling     *scalingDoc   `yaml:"scaling"`
	Condition   *conditionDoc `yaml:"condition"`
	Alternative *effectDoc    `yaml:"alternative"`
	Combine     string        `yaml:"combine"`
}

type scalingDoc struct {
	Source     string  `yaml:"source"`
	Multiplier float64 `yaml:"multiplier"`
	Cap        int     `yaml:"cap"`
}

type conditionDoc struct {
	Kind       string `yaml:"kind"`
	Comparator string `yaml:"comparator"`
	Threshold  int    `yaml:"threshold"`
}

type upgradeDoc struct {
	Condition  string `yaml:"condition"`
	Comparator string `yaml:"comparator"`
	Required   int    `yaml:"required"`
	UpgradedID int    `yaml:"upgraded_id"`
	AllCopies  bool   `yaml:"all_copies"`
}

type stanceDoc struct {
	Enter string `yaml:"enter"`
	Exit  bool   `yaml:"exit"`
}

// Loader reads authored card content into a catalog.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a content loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadDir loads every .yaml file in a directory into a new catalog.
func (l *Loader) LoadDir(dir string) (*game.Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)

	catalog := game.NewCatalog()
	for _, file := range files {
		if err := l.loadFile(catalog, file); err != nil {
			return nil, err
		}
	}
	if err := l.validate(catalog); err != nil {
		return nil, err
	}
	l.logger.Info("card content loaded",
		zap.Int("files", len(files)),
		zap.Int("definitions", catalog.Size()),
	)
	return catalog, nil
}

// LoadBytes loads one YAML document into an existing catalog. Used by tests
// and the content sync path.
func (l *Loader) LoadBytes(catalog *game.Catalog, data []byte) error {
	var doc cardFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse card content: %w", err)
	}
	for i := range doc.Cards {
		def, err := l.buildDefinition(&doc.Cards[i])
		if err != nil {
			return err
		}
		catalog.Add(def)
	}
	return nil
}

func (l *Loader) loadFile(catalog *game.Catalog, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read card file %s: %w", path, err)
	}
	if err := l.LoadBytes(catalog, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (l *Loader) buildDefinition(doc *cardDoc) (*game.CardDefinition, error) {
	if doc.ID == 0 {
		return nil, fmt.Errorf("card %q: missing id", doc.Name)
	}
	def := &game.CardDefinition{
		ID:            doc.ID,
		Name:          doc.Name,
		Cost:          doc.Cost,
		Rarity:        rarityFromName(doc.Rarity),
		Type:          game.CardTypeFromName(doc.Type),
		ComboBuilding: doc.ComboBuilding,
		Finisher:      doc.Finisher,
	}
	for i := range doc.Effects {
		eff, err := l.buildEffect(doc.ID, &doc.Effects[i])
		if err != nil {
			return nil, err
		}
		def.Effects = append(def.Effects, *eff)
	}
	if doc.Upgrade != nil {
		kind := conditions.KindFromName(doc.Upgrade.Condition)
		if kind == conditions.KindUnknown {
			l.logger.Warn("unknown upgrade condition",
				zap.Int("card", doc.ID),
				zap.String("condition", doc.Upgrade.Condition),
			)
		}
		def.Upgrade = &game.UpgradeSpec{
			Condition:     kind,
			Comparator:    conditions.Comparator(doc.Upgrade.Comparator),
			Required:      doc.Upgrade.Required,
			UpgradedDefID: doc.Upgrade.UpgradedID,
			AllCopies:     doc.Upgrade.AllCopies,
		}
	}
	if doc.Stance != nil {
		def.Stance = &game.StanceChange{
			Stance: game.StanceFromName(doc.Stance.Enter),
			Exit:   doc.Stance.Exit,
		}
	}
	return def, nil
}

func (l *Loader) buildEffect(cardID int, doc *effectDoc) (*game.Effect, error) {
	kind := game.EffectKindFromName(doc.Kind)
	if kind == game.EffectUnknown {
		l.logger.Warn("unknown effect kind",
			zap.Int("card", cardID),
			zap.String("kind", doc.Kind),
		)
	}
	eff := &game.Effect{
		Kind:     kind,
		Target:   targeting.Specifier(doc.Target),
		Amount:   doc.Amount,
		Duration: doc.Duration,
		Stance:   game.StanceFromName(doc.Stance),
	}
	if doc.Scaling != nil {
		eff.Scaling = &game.ScalingRule{
			Source:     game.ScalingSourceFromName(doc.Scaling.Source),
			Multiplier: doc.Scaling.Multiplier,
			Cap:        doc.Scaling.Cap,
		}
	}
	if doc.Condition != nil {
		eff.Condition = &game.EffectCondition{
			Kind:       conditions.KindFromName(doc.Condition.Kind),
			Comparator: conditions.Comparator(doc.Condition.Comparator),
			Threshold:  doc.Condition.Threshold,
		}
	}
	if doc.Alternative != nil {
		alt, err := l.buildEffect(cardID, doc.Alternative)
		if err != nil {
			return nil, err
		}
		eff.Alternative = alt
	}
	switch doc.Combine {
	case "", "replace":
		eff.Combine = game.CombineReplace
	case "additional":
		eff.Combine = game.CombineAdditional
	default:
		return nil, fmt.Errorf("card %d: unknown combine policy %q", cardID, doc.Combine)
	}
	return eff, nil
}

// validate checks cross-references after all files loaded: every upgrade
// must point at a registered definition.
func (l *Loader) validate(catalog *game.Catalog) error {
	for _, def := range catalog.All() {
		if def.Upgrade == nil {
			continue
		}
		if catalog.DefinitionByID(def.Upgrade.UpgradedDefID) == nil {
			return fmt.Errorf("card %d (%s): upgraded definition %d not found", def.ID, def.Name, def.Upgrade.UpgradedDefID)
		}
	}
	return nil
}

func rarityFromName(name string) game.Rarity {
	switch name {
	case "uncommon":
		return game.RarityUncommon
	case "rare":
		return game.RarityRare
	case "legendary":
		return game.RarityLegendary
	}
	return game.RarityCommon
}
