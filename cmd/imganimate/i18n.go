// Package main provides localization for the imganimate CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Generate a video from an image and a driving video": "画像と駆動動画から動画を生成",

		// Summary content
		"Animation Summary": "アニメーション生成サマリー",
		"Failed":            "失敗",
		"Inputs":            "入力",
		"Settings":          "設定",
		"Outputs":           "出力",
		"Item":              "項目",
		"Value":             "値",
		"Generated":         "生成日時",
		"took":              "所要時間",
		"N/A":               "なし",

		// Inputs section
		"Source Image":     "元画像",
		"Image Dimensions": "画像サイズ",
		"Driving Video":    "駆動動画",
		"Video Dimensions": "動画サイズ",
		"Frame Rate":       "フレームレート",
		"Time Window":      "使用区間",
		"Driving Frames":   "駆動フレーム数",

		// Settings section
		"Generation Mode": "生成モード",
		"Scale":           "スケール",
		"Adaptive":        "適応",
		"Relative":        "相対",
		"Image Resize":    "画像リサイズ",
		"Video Resize":    "動画リサイズ",
		"Model Input":     "モデル入力サイズ",
		"Video Codec":     "映像コーデック",
		"Audio Codec":     "音声コーデック",

		// Outputs section
		"Video":        "動画",
		"Path":         "パス",
		"Frames":       "フレーム数",
		"Size":         "サイズ",
		"File Size":    "ファイルサイズ",
		"Codec":        "コーデック",
		"Animated":     "生成動画",
		"Side by Side": "比較動画",
	})
}
