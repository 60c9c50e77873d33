package listing

import (
	"fmt"
	"strings"

	"github.com/buddy-dubby/reselling-app/internal/market"
)

// Details is everything the copy builder knows about an item.
type Details struct {
	Name         string
	Brand        string
	Category     string
	Condition    market.Condition
	Color        string
	Size         string
	Measurements string
	Notes        string
}

// Copy holds the generated title plus one description per marketplace, each
// tuned to the house style buyers expect there.
type Copy struct {
	Title       string
	Poshmark    string
	Depop       string
	EBay        string
	Mercari     string
	Xiaohongshu string
	Generic     string
}

var conditionText = map[market.Condition]string{
	market.ConditionNew:       "Brand new with tags, never worn!",
	market.ConditionExcellent: "Like new condition, minimal to no signs of wear.",
	market.ConditionGood:      "Gently used, in great condition with light wear.",
	market.ConditionFair:      "Pre-loved with visible signs of wear. Please see photos for details.",
}

var categoryEmoji = map[string]string{
	"tops":        "👕",
	"bottoms":     "👖",
	"dresses":     "👗",
	"outerwear":   "🧥",
	"shoes":       "👟",
	"bags":        "👜",
	"accessories": "💍",
	"other":       "✨",
}

var xiaohongshuCondition = map[market.Condition]string{
	market.ConditionNew:       "全新带标签",
	market.ConditionExcellent: "九成新",
	market.ConditionGood:      "八成新",
	market.ConditionFair:      "有使用痕迹",
}

// Generate builds listing copy for one item across every marketplace.
func Generate(d Details) Copy {
	emoji, ok := categoryEmoji[strings.ToLower(d.Category)]
	if !ok {
		emoji = "✨"
	}
	cond, ok := conditionText[d.Condition]
	if !ok {
		cond = conditionText[market.ConditionGood]
	}

	title := buildTitle(d)
	generic := genericCopy(d, emoji, title, cond)

	return Copy{
		Title:       title,
		Poshmark:    poshmarkCopy(d, generic),
		Depop:       depopCopy(d, emoji, title, cond),
		EBay:        ebayCopy(d, title, cond),
		Mercari:     mercariCopy(d, title, cond),
		Xiaohongshu: xiaohongshuCopy(d, title),
		Generic:     generic,
	}
}

// buildTitle joins brand, name, and size, skipping the brand when the name
// already carries it.
func buildTitle(d Details) string {
	parts := make([]string, 0, 3)
	if d.Brand != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(d.Brand)) {
		parts = append(parts, d.Brand)
	}
	parts = append(parts, d.Name)
	if d.Size != "" {
		parts = append(parts, "Size "+d.Size)
	}
	return strings.Join(parts, " ")
}

func genericCopy(d Details, emoji, title, cond string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", emoji, title)
	if d.Brand != "" {
		fmt.Fprintf(&b, "Brand: %s\n", d.Brand)
	}
	if d.Color != "" {
		fmt.Fprintf(&b, "Color: %s\n", d.Color)
	}
	if d.Size != "" {
		fmt.Fprintf(&b, "Size: %s\n", d.Size)
	}
	if d.Measurements != "" {
		fmt.Fprintf(&b, "Measurements: %s\n", d.Measurements)
	}
	fmt.Fprintf(&b, "\nCondition: %s\n", cond)
	if d.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Notes)
	}
	return b.String()
}

// poshmarkCopy leans on the full description plus seller-culture boilerplate
// and a hashtag line.
func poshmarkCopy(d Details, generic string) string {
	var b strings.Builder
	b.WriteString(generic)
	b.WriteString("\n💕 Bundle to save on shipping!\n📦 Ships within 1-2 business days\n❓ Questions? Just ask!\n\n#")
	if d.Brand != "" {
		b.WriteString(strings.ReplaceAll(strings.ToLower(d.Brand), " ", "") + " ")
	}
	if d.Category != "" {
		b.WriteString(d.Category + " ")
	}
	b.WriteString("resale thrift secondhand")
	return b.String()
}

func depopCopy(d Details, emoji, title, cond string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n%s\n", emoji, title, cond)
	if d.Measurements != "" {
		fmt.Fprintf(&b, "📏 %s\n", d.Measurements)
	}
	b.WriteString("\n✨ dm me with any questions!")
	return b.String()
}

// ebayCopy emits HTML, which eBay renders in listing bodies.
func ebayCopy(d Details, title, cond string) string {
	brand := d.Brand
	if brand == "" {
		brand = "Unbranded"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>\n", title)
	fmt.Fprintf(&b, "<p><strong>Brand:</strong> %s</p>\n", brand)
	fmt.Fprintf(&b, "<p><strong>Condition:</strong> %s</p>\n", cond)
	if d.Color != "" {
		fmt.Fprintf(&b, "<p><strong>Color:</strong> %s</p>\n", d.Color)
	}
	if d.Size != "" {
		fmt.Fprintf(&b, "<p><strong>Size:</strong> %s</p>\n", d.Size)
	}
	if d.Measurements != "" {
		fmt.Fprintf(&b, "<p><strong>Measurements:</strong> %s</p>\n", d.Measurements)
	}
	if d.Notes != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", d.Notes)
	}
	b.WriteString("\n<p>Please review all photos carefully. Feel free to message with any questions!</p>\n<p>Ships within 1-2 business days with tracking.</p>")
	return b.String()
}

func mercariCopy(d Details, title, cond string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n", title, cond)
	if d.Size != "" {
		fmt.Fprintf(&b, "Size: %s\n", d.Size)
	}
	if d.Measurements != "" {
		fmt.Fprintf(&b, "Measurements: %s\n", d.Measurements)
	}
	b.WriteString("\nMessage me with any questions! Ships fast 📦")
	return b.String()
}

func xiaohongshuCopy(d Details, title string) string {
	brand := d.Brand
	if brand == "" {
		brand = "无品牌"
	}
	state, ok := xiaohongshuCondition[d.Condition]
	if !ok {
		state = xiaohongshuCondition[market.ConditionFair]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✨ %s\n\n品牌: %s\n状态: %s\n", title, brand, state)
	if d.Size != "" {
		fmt.Fprintf(&b, "尺码: %s\n", d.Size)
	}
	if d.Color != "" {
		fmt.Fprintf(&b, "颜色: %s\n", d.Color)
	}
	b.WriteString("\n🏷️ 闲置转让 价格可小刀\n💬 有问题可以私信~")
	return b.String()
}
