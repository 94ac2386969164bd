package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Run report (info)
		"Generation Mode: %s":                       "生成モード: %s",
		"Video Codec: %s":                           "映像コーデック: %s",
		"Audio Codec: %s":                           "音声コーデック: %s",
		"Scale: %s":                                 "スケール: %s",
		"Loading User Input":                        "入力を読み込み中",
		"Video Info:":                               "動画情報:",
		"Image Info:":                               "画像情報:",
		"  Name: %s":                                "  名前: %s",
		"  Dimensions: %dx%d":                       "  サイズ: %dx%d",
		"  Start: %.2f":                             "  開始: %.2f",
		"  Duration: %.2f":                          "  長さ: %.2f",
		"  End: %.2f":                               "  終了: %.2f",
		"  FPS: %.2f":                               "  FPS: %.2f",
		"Resizing %s to %dx%d with Mode: %s":        "%s を %dx%d にリサイズ中 (モード: %s)",
		"The %s is already %dx%d, skipping resize":  "%s は既に %dx%d のためリサイズを省略します",
		"Loading Model":                             "モデルを読み込み中",
		"Generating Video":                          "動画を生成中",
		"Saving Video...":                           "動画を保存中...",
		"Video saved to %s":                         "動画を %s に保存しました",
		"Saving Side by Side Video":                 "比較動画を保存中",
		"Stacked Video saved to %s":                 "比較動画を %s に保存しました",
		"Summary saved to %s":                       "サマリーを %s に保存しました",
		"Interrupted, shutting down...":             "中断されました。シャットダウン中...",

		// Failures (error)
		"Invalid codec configuration: %v":       "コーデック設定が不正です: %v",
		"Failed to load driving video: %v":      "駆動動画の読み込みに失敗しました: %v",
		"Failed to load source image: %v":       "元画像の読み込みに失敗しました: %v",
		"Failed to generate video: %v":          "動画の生成に失敗しました: %v",
		"Failed to save video: %v":              "動画の保存に失敗しました: %v",
		"Failed to save side by side video: %v": "比較動画の保存に失敗しました: %v",
		"Failed to write summary: %s":           "サマリーの書き込みに失敗しました: %s",

		// Driving and source stages
		"Window %s of %.2fs": "%[2].2f 秒中の区間 %[1]s",
		"Start %.2fs is past the end of the video, using the whole video": "開始位置 %.2f 秒が動画の長さを超えているため、動画全体を使用します",
		"Read %d driving frames":     "駆動フレームを %d 枚読み込みました",
		"Failed to save debug image: %v": "デバッグ画像の保存に失敗しました: %v",

		// Probe
		"Probed %s with %s":           "%s を%sで解析しました",
		"MP4 probe failed for %s: %s": "%s のMP4解析に失敗しました: %s",

		// Animator
		"Loaded model %s (config=%s, checkpoint=%s)":                "モデル %s を読み込みました (config=%s, checkpoint=%s)",
		"Animating %d driving frames (adapt_scale=%t, relative=%t)": "駆動フレーム %d 枚でアニメーション生成中 (adapt_scale=%t, relative=%t)",
		"Running %s %s":              "%s %s を実行中",
		"Read %d generated frames":   "生成フレームを %d 枚読み込みました",

		// Encode and stack stages
		"Encoding":                                "エンコード中",
		"Stacking":                                "比較動画を合成中",
		"Wrote %d frames (%d bytes) to %s":        "%d フレーム (%d バイト) を %s に書き込みました",
		"Wrote %d stacked frames (%dx%d) to %s":   "比較フレーム %d 枚 (%dx%d) を %s に書き込みました",
		"Output codec is %s, expected %s for %s": "出力のコーデックは %[1]s ですが、%[3]s には %[2]s が期待されます",
		"Could not inspect output: %v":            "出力を検査できませんでした: %v",
	})
}
