package reports

import (
	"fmt"
	"html"
	"strings"

	"github.com/beanlink/beanlink/internal/market/entity"
)

// Render builds the subject and HTML body for one report from its
// aggregate snapshot. Arabic subscribers get an Arabic subject line; the
// table content stays numeric either way.
func Render(reportType, language string, snapshot entity.JSONB) (subject, htmlBody string) {
	switch reportType {
	case entity.ReportTypeCommission:
		return renderCommission(language, snapshot)
	case entity.ReportTypeSmartCheck:
		return renderSmartCheck(language, snapshot)
	default:
		return renderInventory(language, snapshot)
	}
}

func renderCommission(language string, snapshot entity.JSONB) (string, string) {
	subject := "Weekly commission report"
	heading := "Platform commissions, last 7 days"
	if language == "ar" {
		subject = "تقرير العمولات الأسبوعي"
		heading = "عمولات المنصة خلال آخر 7 أيام"
	}

	var b strings.Builder
	openDocument(&b, heading)
	fmt.Fprintf(&b, "<p>Window: %s to %s</p>",
		html.EscapeString(asString(snapshot["window_start"])),
		html.EscapeString(asString(snapshot["window_end"])))
	fmt.Fprintf(&b, "<p>Commissions: <strong>%s</strong> &middot; Base volume: <strong>%.2f</strong> &middot; Commission total: <strong>%.2f</strong></p>",
		asString(snapshot["count"]), asFloat(snapshot["total_base"]), asFloat(snapshot["total_amount"]))

	b.WriteString("<table border=\"0\" cellpadding=\"6\"><tr><th align=\"left\">Supplier</th><th align=\"right\">Count</th><th align=\"right\">Total</th></tr>")
	for _, row := range asSlice(snapshot["suppliers"]) {
		m, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td align=\"right\">%s</td><td align=\"right\">%.2f</td></tr>",
			html.EscapeString(asString(m["supplier_name"])), asString(m["count"]), asFloat(m["total"]))
	}
	b.WriteString("</table>")
	closeDocument(&b)

	return subject, b.String()
}

func renderInventory(language string, snapshot entity.JSONB) (string, string) {
	subject := "Weekly inventory report"
	heading := "Your inventory this week"
	if language == "ar" {
		subject = "تقرير المخزون الأسبوعي"
		heading = "مخزونك هذا الأسبوع"
	}

	var b strings.Builder
	openDocument(&b, heading)
	writeItemTable(&b, snapshot)
	closeDocument(&b)

	return subject, b.String()
}

func renderSmartCheck(language string, snapshot entity.JSONB) (string, string) {
	subject := "Smart check: low stock alerts"
	heading := "Items at or below their restock level"
	if language == "ar" {
		subject = "فحص ذكي: تنبيهات انخفاض المخزون"
		heading = "أصناف عند حد إعادة الطلب أو أقل"
	}

	var b strings.Builder
	openDocument(&b, heading)
	items := asSlice(snapshot["items"])
	if len(items) == 0 {
		b.WriteString("<p>All items are above their restock levels.</p>")
	} else {
		writeItemTable(&b, snapshot)
	}
	closeDocument(&b)

	return subject, b.String()
}

func writeItemTable(b *strings.Builder, snapshot entity.JSONB) {
	b.WriteString("<table border=\"0\" cellpadding=\"6\"><tr><th align=\"left\">Item</th><th align=\"left\">Category</th><th align=\"right\">Quantity</th><th align=\"right\">Restock level</th></tr>")
	for _, row := range asSlice(snapshot["items"]) {
		m, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		style := ""
		if low, _ := m["low"].(bool); low {
			style = " style=\"color:#b00020\""
		}
		fmt.Fprintf(b, "<tr%s><td>%s</td><td>%s</td><td align=\"right\">%.2f %s</td><td align=\"right\">%.2f</td></tr>",
			style,
			html.EscapeString(asString(m["name"])),
			html.EscapeString(asString(m["category"])),
			asFloat(m["quantity"]), html.EscapeString(asString(m["unit"])),
			asFloat(m["low_stock_level"]))
	}
	b.WriteString("</table>")
}

func openDocument(b *strings.Builder, heading string) {
	b.WriteString("<!DOCTYPE html><html><body style=\"font-family:Arial,sans-serif;color:#222\">")
	fmt.Fprintf(b, "<h2>%s</h2>", html.EscapeString(heading))
}

func closeDocument(b *strings.Builder) {
	b.WriteString("<p style=\"color:#888;font-size:12px\">Sent by beanlink. Manage your notification preferences in your account settings.</p>")
	b.WriteString("</body></html>")
}

// Snapshot values round-trip through jsonb, so numbers may arrive as
// int64, float64 or json.Number depending on the path.

func asString(v interface{}) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%.2f", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	default:
		return 0
	}
}

func asSlice(v interface{}) []interface{} {
	if s, ok := v.([]interface{}); ok {
		return s
	}
	return nil
}
