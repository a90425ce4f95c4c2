// Package templates holds the fixed catalog of assignment starter sources.
package templates

import (
	"fmt"
	"sort"
)

// catalog maps assignment labels to their starter source. The content is
// static and never derived from an evaluation.
var catalog = map[string]string{
	"課題1": starter("課題1: Hello World を出力するプログラム",
		"printf関数を使用してHello Worldを出力してください"),
	"課題2": starter("課題2: 変数を使った計算プログラム",
		"int型の変数を宣言し、計算を行ってください"),
	"課題3": starter("課題3: 条件分岐を使ったプログラム",
		"if文を使用した条件分岐を実装してください"),
	"課題4": starter("課題4: ループを使ったプログラム",
		"for文またはwhile文を使用したループを実装してください"),
}

func starter(title, task string) string {
	return "#include <stdio.h>\n" +
		"\n" +
		"int main() {\n" +
		"    // " + title + "\n" +
		"    // TODO: " + task + "\n" +
		"    \n" +
		"    return 0;\n" +
		"}"
}

// Get returns the template for label, or an error for unknown labels.
func Get(label string) (string, error) {
	t, ok := catalog[label]
	if !ok {
		return "", fmt.Errorf("templates: unknown assignment %q (available: %v)", label, Labels())
	}
	return t, nil
}

// Labels returns all assignment labels in sorted order.
func Labels() []string {
	labels := make([]string, 0, len(catalog))
	for l := range catalog {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
