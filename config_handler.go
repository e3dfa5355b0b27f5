package main

import (
	"errors"
	"net/http"
	"os"

	"mfg/config"
	"mfg/model"
	"mfg/respond"
)

// ConfigHandler は GET で現在の設定を返し、POST で保存します。
func ConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			respond.JSON(w, http.StatusOK, config.GetConfig())
		case http.MethodPost:
			var newCfg config.Config
			if !respond.Decode(w, r, &newCfg) {
				return
			}
			if err := validateFolderPath(newCfg.UploadDir); err != nil {
				respond.Error(w, r, "save config", err)
				return
			}
			if err := validateFolderPath(newCfg.PrintOutputDir); err != nil {
				respond.Error(w, r, "save config", err)
				return
			}
			if err := config.SaveConfig(newCfg); err != nil {
				respond.Error(w, r, "save config", err)
				return
			}
			respond.JSON(w, http.StatusOK, map[string]string{"message": "设置已保存"})
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

// 空のパスは既定値を使うため検証しません。
func validateFolderPath(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewClientError("目录不存在: %s", path)
		}
		return err
	}
	if !info.IsDir() {
		return model.NewClientError("路径不是目录: %s", path)
	}
	return nil
}
