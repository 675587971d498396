package utils

// SettingsDirName gdata 使用的应用名，同时是 Android 应用目录下的子目录名
const SettingsDirName = "backdrop"
