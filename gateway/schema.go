package gateway

import (
	"github.com/meysamhadeli/revai/gateway/models"
	pm "github.com/meysamhadeli/revai/providers/models"
)

func str() *pm.Schema { return &pm.Schema{Type: pm.TypeString} }

func num() *pm.Schema { return &pm.Schema{Type: pm.TypeNumber} }

func enum(values ...string) *pm.Schema {
	return &pm.Schema{Type: pm.TypeString, Enum: values}
}

func arrayOf(items *pm.Schema) *pm.Schema {
	return &pm.Schema{Type: pm.TypeArray, Items: items}
}

func object(props map[string]*pm.Schema, required ...string) *pm.Schema {
	return &pm.Schema{Type: pm.TypeObject, Properties: props, Required: required}
}

func percent() *pm.Schema {
	lo, hi := 0.0, 100.0
	return &pm.Schema{Type: pm.TypeNumber, Minimum: &lo, Maximum: &hi}
}

func reviewSchema() *pm.Schema {
	category := object(map[string]*pm.Schema{
		"score":   num(),
		"summary": str(),
		"findings": arrayOf(object(map[string]*pm.Schema{
			"lineReference": str(),
			"issue":         str(),
			"description":   str(),
			"suggestedFix":  str(),
			"severity":      enum(models.SeverityCritical, models.SeverityWarning, models.SeveritySuggestion),
		}, "issue", "description", "suggestedFix", "severity")),
	}, "score", "summary", "findings")

	return object(map[string]*pm.Schema{
		"overallScore":     percent(),
		"executiveSummary": str(),
		"categories": object(map[string]*pm.Schema{
			"security":        category,
			"bugs":            category,
			"performance":     category,
			"quality":         category,
			"maintainability": category,
		}, "security", "bugs", "performance", "quality", "maintainability"),
	}, "overallScore", "executiveSummary", "categories")
}

func securitySchema() *pm.Schema {
	return object(map[string]*pm.Schema{
		"securityScore": num(),
		"vulnerabilities": arrayOf(object(map[string]*pm.Schema{
			"type":         str(),
			"severity":     enum("Critical", "High", "Medium", "Low"),
			"cwe":          str(),
			"description":  str(),
			"attackVector": str(),
			"mitigation":   str(),
		}, "type", "severity", "description", "attackVector", "mitigation")),
		"dataSensitivityAnalysis": str(),
		"complianceSummary":       str(),
	}, "securityScore", "vulnerabilities", "dataSensitivityAnalysis", "complianceSummary")
}

func performanceSchema() *pm.Schema {
	return object(map[string]*pm.Schema{
		"performanceScore": num(),
		"bottlenecks": arrayOf(object(map[string]*pm.Schema{
			"area":          enum("Memory", "CPU", "Network", "Database", "Bundle Size"),
			"impact":        enum("High", "Medium", "Low"),
			"complexity":    str(),
			"bottleneck":    str(),
			"optimization":  str(),
			"optimizedCode": str(),
		}, "area", "impact", "complexity", "bottleneck", "optimization", "optimizedCode")),
		"resourceAnalysis":   str(),
		"scalabilityVerdict": str(),
	}, "performanceScore", "bottlenecks", "resourceAnalysis", "scalabilityVerdict")
}

func explanationSchema() *pm.Schema {
	return object(map[string]*pm.Schema{
		"title":               str(),
		"briefSummary":        str(),
		"techStack":           arrayOf(str()),
		"architecturePattern": str(),
		"coreLogicFlow":       str(),
		"keyModules": arrayOf(object(map[string]*pm.Schema{
			"name":           str(),
			"responsibility": str(),
		}, "name", "responsibility")),
	}, "title", "briefSummary", "techStack", "architecturePattern", "coreLogicFlow", "keyModules")
}

func growthSchema() *pm.Schema {
	code := str()
	code.Description = "A snippet of code illustrating how to implement this suggestion."
	return object(map[string]*pm.Schema{
		"visionStatement": str(),
		"suggestions": arrayOf(object(map[string]*pm.Schema{
			"category":      enum("Feature", "Scalability", "UX", "Architecture", "DX"),
			"title":         str(),
			"impact":        enum("High", "Medium", "Low"),
			"complexity":    enum("Easy", "Medium", "Hard"),
			"description":   str(),
			"reasoning":     str(),
			"suggestedCode": code,
		}, "category", "title", "impact", "complexity", "description", "reasoning", "suggestedCode")),
	}, "visionStatement", "suggestions")
}

func fixSchema(fileSet bool) *pm.Schema {
	if !fileSet {
		return object(map[string]*pm.Schema{"fixedCode": str()}, "fixedCode")
	}
	return object(map[string]*pm.Schema{
		"fixedFiles": arrayOf(object(map[string]*pm.Schema{
			"path":    str(),
			"content": str(),
		}, "path", "content")),
	}, "fixedFiles")
}
